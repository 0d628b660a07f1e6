package witness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// State of the witness pair of a circuit instance.
type State int

const (
	// NoWitness means no witness file exists yet for the instance.
	NoWitness State = iota
	// Original means only the unmodified witness file exists.
	Original
	// Modified means a modified witness file exists alongside the original
	// and is authoritative for proof generation and verification.
	Modified
)

func (s State) String() string {
	switch s {
	case NoWitness:
		return "no-witness"
	case Original:
		return "original"
	case Modified:
		return "modified"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Tracker is the sole arbiter of which witness file is current for a
// circuit instance. State is held explicitly rather than inferred by
// probing the filesystem, so the transitions are testable without files;
// OpenTracker recovers the state from disk when reattaching to an existing
// working directory. Not safe for concurrent use: the toolkit is
// single-caller per circuit instance.
type Tracker struct {
	originalPath string
	modifiedPath string
	state        State
}

// NewTracker creates a tracker in the NoWitness state for the given pair
// of witness file paths.
func NewTracker(originalPath, modifiedPath string) *Tracker {
	return &Tracker{originalPath: originalPath, modifiedPath: modifiedPath}
}

// OpenTracker creates a tracker whose initial state reflects which of the
// two witness files currently exist on disk.
func OpenTracker(originalPath, modifiedPath string) *Tracker {
	t := NewTracker(originalPath, modifiedPath)
	if fileExists(originalPath) {
		t.state = Original
		if fileExists(modifiedPath) {
			t.state = Modified
		}
	}
	return t
}

// State returns the current witness state.
func (t *Tracker) State() State {
	return t.state
}

// OriginalPath returns the path of the unmodified witness file.
func (t *Tracker) OriginalPath() string {
	return t.originalPath
}

// ModifiedPath returns the path where a modified witness is persisted.
func (t *Tracker) ModifiedPath() string {
	return t.modifiedPath
}

// CurrentPath returns the witness file that proof generation and
// verification must use right now. In the NoWitness state it fails with
// ErrWitnessNotFound: the caller has to calculate a witness from inputs
// first.
func (t *Tracker) CurrentPath() (string, error) {
	switch t.state {
	case Original:
		return t.originalPath, nil
	case Modified:
		return t.modifiedPath, nil
	default:
		return "", ErrWitnessNotFound
	}
}

// RecordCalculated notes that the external witness calculation produced the
// original witness file. Recalculating from fresh inputs discards any
// previous modified witness.
func (t *Tracker) RecordCalculated() error {
	if t.state == Modified {
		if err := removeIfExists(t.modifiedPath); err != nil {
			return err
		}
	}
	t.state = Original
	return nil
}

// RecordModified notes that an override application persisted a modified
// witness file. A further override overwrites the modified file in place,
// it does not create a third variant. Without an original witness there is
// nothing to modify, so the call fails with ErrWitnessNotFound.
func (t *Tracker) RecordModified() error {
	if t.state == NoWitness {
		return ErrWitnessNotFound
	}
	t.state = Modified
	return nil
}

// Reset returns the instance to the pristine original witness, deleting the
// modified file. It is a no-op in the Original and NoWitness states.
func (t *Tracker) Reset() error {
	if t.state != Modified {
		return nil
	}
	if err := removeIfExists(t.modifiedPath); err != nil {
		return err
	}
	t.state = Original
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove witness file %s: %w", path, err)
	}
	return nil
}
