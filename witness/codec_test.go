package witness

import (
	"encoding/binary"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	qt "github.com/frankban/quicktest"
)

func bn254Prime() *big.Int {
	return fr_bn254.Modulus()
}

func newVector(values ...int64) Vector {
	v := make(Vector, len(values))
	for i, x := range values {
		v[i] = big.NewInt(x)
	}
	return v
}

func TestCodecRoundTrip(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "witness.wtns")
	prime := bn254Prime()
	vector := newVector(1, 200, 20, 10)

	err := Write(path, vector, prime)
	c.Assert(err, qt.IsNil)

	got, err := ReadVector(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Equal(vector), qt.IsTrue)

	gotPrime, err := ReadPrime(path)
	c.Assert(err, qt.IsNil)
	c.Assert(gotPrime.Cmp(prime), qt.Equals, 0)
}

func TestCodecRoundTripLargeElements(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "witness.wtns")
	prime := bn254Prime()
	// values near the top of the field must survive bit-exactly
	maxElem := new(big.Int).Sub(prime, big.NewInt(1))
	vector := Vector{big.NewInt(1), maxElem, new(big.Int).Rsh(prime, 1)}

	c.Assert(Write(path, vector, prime), qt.IsNil)
	got, err := ReadVector(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Equal(vector), qt.IsTrue)
}

func TestCodecFieldWidth(t *testing.T) {
	c := qt.New(t)
	// bn254's 254-bit prime packs into 4 64-bit words
	c.Assert(fieldWidth(bn254Prime()), qt.Equals, 32)
	// a 65-bit prime still needs two full words
	p65 := new(big.Int).Lsh(big.NewInt(1), 64)
	c.Assert(fieldWidth(p65), qt.Equals, 16)
}

func TestCodecEmptyVector(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "witness.wtns")

	c.Assert(Write(path, Vector{}, bn254Prime()), qt.IsNil)
	got, err := ReadVector(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 0)
}

func TestCodecMissingFile(t *testing.T) {
	c := qt.New(t)
	missing := filepath.Join(t.TempDir(), "nope.wtns")

	_, err := ReadVector(missing)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "nope.wtns")

	_, err = ReadPrime(missing)
	c.Assert(err, qt.IsNotNil)
}

func TestCodecBadMagic(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "bad.wtns")
	c.Assert(os.WriteFile(path, []byte("zkey\x02\x00\x00\x00"), 0o644), qt.IsNil)

	_, err := ReadPrime(path)
	c.Assert(errors.Is(err, ErrMalformedWitnessFile), qt.IsTrue)
	c.Assert(err.Error(), qt.Contains, path)
}

func TestCodecBadVersion(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "bad.wtns")

	buf := []byte("wtns")
	buf = binary.LittleEndian.AppendUint32(buf, 3) // unsupported version
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	c.Assert(os.WriteFile(path, buf, 0o644), qt.IsNil)

	_, err := ReadPrime(path)
	c.Assert(errors.Is(err, ErrMalformedWitnessFile), qt.IsTrue)
	c.Assert(err.Error(), qt.Contains, "version")
}

func TestCodecTruncatedBody(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "witness.wtns")
	c.Assert(Write(path, newVector(1, 2, 3), bn254Prime()), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(os.WriteFile(path, data[:len(data)-8], 0o644), qt.IsNil)

	_, err = ReadVector(path)
	c.Assert(errors.Is(err, ErrMalformedWitnessFile), qt.IsTrue)
}

func TestCodecWrongSectionID(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "witness.wtns")
	c.Assert(Write(path, newVector(1), bn254Prime()), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	// first section id lives right after magic+version+sectionCount
	binary.LittleEndian.PutUint32(data[12:], 9)
	c.Assert(os.WriteFile(path, data, 0o644), qt.IsNil)

	_, err = ReadPrime(path)
	c.Assert(errors.Is(err, ErrMalformedWitnessFile), qt.IsTrue)
}

func TestVectorClone(t *testing.T) {
	c := qt.New(t)
	v := newVector(1, 2, 3)
	clone := v.Clone()
	clone[1].SetInt64(99)
	c.Assert(v[1].Int64(), qt.Equals, int64(2))
	c.Assert(v.Equal(clone), qt.IsFalse)
	c.Assert(v.Equal(newVector(1, 2, 3)), qt.IsTrue)
	c.Assert(v.Equal(newVector(1, 2)), qt.IsFalse)
}
