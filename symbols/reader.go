// Package symbols parses circom symbol tables (.sym files) and resolves
// fully qualified signal names to their witness-vector positions.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// Entry is one line of a symbol table: the compiler-assigned signal and
// component identifiers, the position of the signal in the witness vector
// and the fully qualified dotted signal name (e.g. "main.sub.out[0][1]").
// A negative WitnessIndex means the signal was optimized away and has no
// witness slot.
type Entry struct {
	SignalID     *big.Int
	WitnessIndex int64
	ComponentID  *big.Int
	Name         string
}

// Reader streams the entries of a symbol table file one line at a time.
// Symbol tables scale with circuit size, so the file is never materialized
// in memory. Lines that do not match the four-field comma-separated shape
// are skipped silently.
type Reader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
}

// Open opens the symbol table at path for streaming.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol table %s: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	// Signal names can get long on deeply nested components.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{path: path, file: f, scanner: scanner}, nil
}

// Next returns the next well-formed entry, or io.EOF when the file is
// exhausted. Malformed lines are consumed and skipped.
func (r *Reader) Next() (*Entry, error) {
	for r.scanner.Scan() {
		entry, ok := parseLine(r.scanner.Text())
		if !ok {
			continue
		}
		return entry, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbol table %s: %w", r.path, err)
	}
	return nil, io.EOF
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Each streams every well-formed entry of the symbol table at path into fn,
// stopping early if fn returns false.
func Each(path string, fn func(*Entry) bool) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()
	for {
		entry, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(entry) {
			return nil
		}
	}
}

// parseLine parses "signalId,witnessIndex,componentId,signalName". The id
// fields are arbitrary precision so huge compiler-assigned ids cannot
// overflow; the witness index fits an int64 since it indexes a real vector.
func parseLine(line string) (*Entry, bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 4 {
		return nil, false
	}
	signalID, ok := new(big.Int).SetString(strings.TrimSpace(fields[0]), 10)
	if !ok {
		return nil, false
	}
	witnessIndex, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return nil, false
	}
	componentID, ok := new(big.Int).SetString(strings.TrimSpace(fields[2]), 10)
	if !ok {
		return nil, false
	}
	name := strings.TrimSpace(fields[3])
	if name == "" {
		return nil, false
	}
	return &Entry{
		SignalID:     signalID,
		WitnessIndex: witnessIndex,
		ComponentID:  componentID,
		Name:         name,
	}, true
}
