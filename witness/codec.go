package witness

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"os"
)

// The .wtns container written by circom/snarkjs: a 4-byte magic, a version,
// a section count, then a header section (field width n8, prime, element
// count) and a data section (count elements of n8 bytes each). All integers
// are little-endian; field elements are fixed-width little-endian.
const (
	wtnsMagic   = "wtns"
	wtnsVersion = 2

	headerSectionID = 1
	dataSectionID   = 2
)

// fieldWidth returns the element byte width for a prime, matching the
// 64-bit word alignment of the original encoding.
func fieldWidth(prime *big.Int) int {
	return (prime.BitLen() + 63) / 64 * 8
}

// ReadPrime reads only the container header of the witness file at path and
// returns the prime modulus of its field. The element body is not loaded.
func ReadPrime(path string) (*big.Int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open witness file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	r := bufio.NewReader(f)
	prime, _, err := readHeader(r, path)
	if err != nil {
		return nil, err
	}
	return prime, nil
}

// ReadVector loads the full witness vector from the file at path.
func ReadVector(path string) (Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open witness file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	r := bufio.NewReader(f)
	prime, count, err := readHeader(r, path)
	if err != nil {
		return nil, err
	}
	n8 := fieldWidth(prime)

	sectionID, sectionLen, err := readSectionHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing data section", ErrMalformedWitnessFile, path)
	}
	if sectionID != dataSectionID || sectionLen != uint64(count)*uint64(n8) {
		return nil, fmt.Errorf("%w: %s: unexpected data section (id %d, length %d)",
			ErrMalformedWitnessFile, path, sectionID, sectionLen)
	}

	vector := make(Vector, count)
	buf := make([]byte, n8)
	for i := range vector {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: %s: truncated element %d", ErrMalformedWitnessFile, path, i)
		}
		vector[i] = leBytesToBigInt(buf)
	}
	return vector, nil
}

// Write serializes the vector into a .wtns container at path, overwriting
// any previous file. The element byte width is derived from the prime.
func Write(path string, vector Vector, prime *big.Int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create witness file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := writeContainer(w, vector, prime); err != nil {
		_ = f.Close()
		return fmt.Errorf("write witness file %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write witness file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close witness file %s: %w", path, err)
	}
	return nil
}

func writeContainer(w io.Writer, vector Vector, prime *big.Int) error {
	n8 := fieldWidth(prime)
	if _, err := w.Write([]byte(wtnsMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(wtnsVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(2)); err != nil { // section count
		return err
	}

	// Header section: n8, prime, element count.
	if err := binary.Write(w, binary.LittleEndian, uint32(headerSectionID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(8+n8)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(n8)); err != nil {
		return err
	}
	if _, err := w.Write(bigIntToLEBytes(prime, n8)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vector))); err != nil {
		return err
	}

	// Data section: every element in n8 fixed-width little-endian bytes.
	if err := binary.Write(w, binary.LittleEndian, uint32(dataSectionID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(vector)*n8)); err != nil {
		return err
	}
	for _, e := range vector {
		if _, err := w.Write(bigIntToLEBytes(e, n8)); err != nil {
			return err
		}
	}
	return nil
}

// readHeader consumes the container preamble and the header section,
// returning the prime and the element count.
func readHeader(r io.Reader, path string) (*big.Int, uint32, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformedWitnessFile, path, err)
	}
	if string(magic) != wtnsMagic {
		return nil, 0, fmt.Errorf("%w: %s: bad magic %q", ErrMalformedWitnessFile, path, magic)
	}
	var version, sectionCount uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated preamble", ErrMalformedWitnessFile, path)
	}
	if version != wtnsVersion {
		return nil, 0, fmt.Errorf("%w: %s: unsupported version %d", ErrMalformedWitnessFile, path, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &sectionCount); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated preamble", ErrMalformedWitnessFile, path)
	}

	sectionID, sectionLen, err := readSectionHeader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: missing header section", ErrMalformedWitnessFile, path)
	}
	if sectionID != headerSectionID {
		return nil, 0, fmt.Errorf("%w: %s: expected header section, got id %d",
			ErrMalformedWitnessFile, path, sectionID)
	}
	var n8 uint32
	if err := binary.Read(r, binary.LittleEndian, &n8); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated header", ErrMalformedWitnessFile, path)
	}
	if sectionLen != uint64(8+n8) {
		return nil, 0, fmt.Errorf("%w: %s: header section length %d does not match n8 %d",
			ErrMalformedWitnessFile, path, sectionLen, n8)
	}
	primeBytes := make([]byte, n8)
	if _, err := io.ReadFull(r, primeBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated prime", ErrMalformedWitnessFile, path)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated element count", ErrMalformedWitnessFile, path)
	}
	return leBytesToBigInt(primeBytes), count, nil
}

func readSectionHeader(r io.Reader) (uint32, uint64, error) {
	var id uint32
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return 0, 0, err
	}
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return 0, 0, err
	}
	return id, length, nil
}

// bigIntToLEBytes encodes x as exactly n8 little-endian bytes. Values wider
// than n8 bytes are truncated to the low n8 bytes, mirroring the fixed-width
// encoding of the original container.
func bigIntToLEBytes(x *big.Int, n8 int) []byte {
	be := x.Bytes() // big-endian, minimal width
	buf := make([]byte, n8)
	for i := 0; i < len(be) && i < n8; i++ {
		buf[i] = be[len(be)-1-i]
	}
	return buf
}

func leBytesToBigInt(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
