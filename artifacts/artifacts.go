// Package artifacts manages the per-circuit-instance working directory
// holding the compiled artifact set: constraint system, symbol table,
// witness calculator WASM, keys, witness files and proof outputs. Each
// instance gets its own directory keyed by a unique suffix, so concurrent
// instances of the same circuit never collide.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/vocdoni/circom-harness/config"
	"github.com/vocdoni/circom-harness/log"
	"github.com/vocdoni/circom-harness/types"
)

// Manifest records what a working directory holds, so a later process can
// reattach to it without recompiling.
type Manifest struct {
	Circuit   string        `cbor:"circuit"`
	Source    string        `cbor:"source"`
	Curve     string        `cbor:"curve"`
	Prime     *types.BigInt `cbor:"prime"`
	CreatedAt time.Time     `cbor:"createdAt"`
}

// Instance is a circuit instance's working directory.
type Instance struct {
	dir      string
	manifest Manifest
}

// New creates a fresh working directory under baseDir for the circuit and
// persists the manifest into it. The directory name carries a random
// suffix: instances are sharded by directory, not coordinated by locks.
func New(baseDir string, manifest Manifest) (*Instance, error) {
	if manifest.Circuit == "" {
		return nil, fmt.Errorf("manifest needs a circuit name")
	}
	dir := filepath.Join(baseDir, fmt.Sprintf("%s-%s", manifest.Circuit, uuid.New().String()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create working directory %s: %w", dir, err)
	}
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = time.Now().UTC()
	}
	inst := &Instance{dir: dir, manifest: manifest}
	if err := inst.writeManifest(); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	log.Debugw("created circuit working directory", "circuit", manifest.Circuit, "dir", dir)
	return inst, nil
}

// Open reattaches to an existing working directory by reading its manifest.
func Open(dir string) (*Instance, error) {
	data, err := os.ReadFile(filepath.Join(dir, config.ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest in %s: %w", dir, err)
	}
	var manifest Manifest
	if err := cbor.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest in %s: %w", dir, err)
	}
	return &Instance{dir: dir, manifest: manifest}, nil
}

func (i *Instance) writeManifest() error {
	data, err := cbor.Marshal(i.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(i.dir, config.ManifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Dir returns the working directory path.
func (i *Instance) Dir() string { return i.dir }

// Manifest returns the instance manifest.
func (i *Instance) Manifest() Manifest { return i.manifest }

// Path returns the path of a named file inside the working directory.
func (i *Instance) Path(name string) string { return filepath.Join(i.dir, name) }

// Fixed artifact locations inside the working directory.

func (i *Instance) R1CSPath() string            { return i.Path(config.R1CSFileName) }
func (i *Instance) SymPath() string             { return i.Path(config.SymFileName) }
func (i *Instance) WasmPath() string            { return i.Path(config.WasmFileName) }
func (i *Instance) ProvingKeyPath() string      { return i.Path(config.ProvingKeyFileName) }
func (i *Instance) VerificationKeyPath() string { return i.Path(config.VerificationKeyFileName) }
func (i *Instance) WitnessPath() string         { return i.Path(config.WitnessFileName) }
func (i *Instance) ModifiedWitnessPath() string { return i.Path(config.ModifiedWitnessFileName) }
func (i *Instance) ProofPath() string           { return i.Path(config.ProofFileName) }
func (i *Instance) PublicSignalsPath() string   { return i.Path(config.PublicSignalsFileName) }
func (i *Instance) VerifierContractPath() string {
	return i.Path(config.VerifierContractName)
}

// Cleanup removes the working directory and everything in it.
func (i *Instance) Cleanup() error {
	log.Debugw("removing circuit working directory", "dir", i.dir)
	if err := os.RemoveAll(i.dir); err != nil {
		return fmt.Errorf("remove working directory %s: %w", i.dir, err)
	}
	return nil
}
