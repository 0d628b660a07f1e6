// Package harness ties the toolkit together around a single circuit
// instance: compilation, witness calculation, signal overrides, proof
// generation and verification, and the verifier contract. Every proving
// operation consults the witness state tracker, so an override
// transparently affects the next proof without the caller juggling file
// paths.
//
// A Circuit is meant for one logical caller at a time; concurrency is
// achieved by creating separate instances, each with its own working
// directory.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	rapidsnarktypes "github.com/iden3/go-rapidsnark/types"

	"github.com/vocdoni/circom-harness/artifacts"
	"github.com/vocdoni/circom-harness/compiler"
	"github.com/vocdoni/circom-harness/config"
	"github.com/vocdoni/circom-harness/log"
	"github.com/vocdoni/circom-harness/prover"
	"github.com/vocdoni/circom-harness/solidity"
	"github.com/vocdoni/circom-harness/types"
	"github.com/vocdoni/circom-harness/witness"
)

// Circuit is one compiled circuit instance with its working directory and
// witness state.
type Circuit struct {
	inst    *artifacts.Instance
	tracker *witness.Tracker
	prime   *big.Int
}

// Compile compiles the circom source at sourcePath into a fresh working
// directory under baseDir and returns the ready-to-use instance. The
// instance name in the manifest is the circuit name, while the directory
// carries a unique suffix.
func Compile(ctx context.Context, baseDir, name, sourcePath string, opts compiler.Options) (*Circuit, error) {
	curve := opts.Curve
	if curve == "" {
		curve = config.DefaultCurve
	}
	prime, err := config.CurvePrime(curve)
	if err != nil {
		return nil, err
	}
	inst, err := artifacts.New(baseDir, artifacts.Manifest{
		Circuit: name,
		Source:  sourcePath,
		Curve:   curve,
		Prime:   new(types.BigInt).SetBigInt(prime),
	})
	if err != nil {
		return nil, err
	}
	if _, err := compiler.Compile(ctx, sourcePath, inst.Dir(), opts); err != nil {
		_ = inst.Cleanup()
		return nil, err
	}
	return &Circuit{
		inst:    inst,
		tracker: witness.NewTracker(inst.WitnessPath(), inst.ModifiedWitnessPath()),
		prime:   prime,
	}, nil
}

// Open reattaches to an existing working directory, recovering the witness
// state from the files present on disk.
func Open(dir string) (*Circuit, error) {
	inst, err := artifacts.Open(dir)
	if err != nil {
		return nil, err
	}
	manifest := inst.Manifest()
	if manifest.Prime == nil {
		return nil, fmt.Errorf("manifest in %s carries no field prime", dir)
	}
	return &Circuit{
		inst:    inst,
		tracker: witness.OpenTracker(inst.WitnessPath(), inst.ModifiedWitnessPath()),
		prime:   manifest.Prime.MathBigInt(),
	}, nil
}

// Instance exposes the underlying working directory.
func (c *Circuit) Instance() *artifacts.Instance { return c.inst }

// WitnessState reports the current witness state of the instance.
func (c *Circuit) WitnessState() witness.State { return c.tracker.State() }

// InstallKeys writes the proving and verification keys produced by the
// external trusted-setup tooling into the working directory.
func (c *Circuit) InstallKeys(zkey, vkeyJSON []byte) error {
	if err := os.WriteFile(c.inst.ProvingKeyPath(), zkey, 0o644); err != nil {
		return fmt.Errorf("write proving key %s: %w", c.inst.ProvingKeyPath(), err)
	}
	if err := os.WriteFile(c.inst.VerificationKeyPath(), vkeyJSON, 0o644); err != nil {
		return fmt.Errorf("write verification key %s: %w", c.inst.VerificationKeyPath(), err)
	}
	return nil
}

// CalculateWitness runs the circuit's witness calculator over the inputs
// and persists the original witness file. Any previous witness (original
// or modified) for this instance is superseded.
func (c *Circuit) CalculateWitness(inputs map[string]*types.BigInt) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	wasm, err := os.ReadFile(c.inst.WasmPath())
	if err != nil {
		return fmt.Errorf("read witness calculator %s: %w", c.inst.WasmPath(), err)
	}
	wtns, err := prover.CalculateWitness(wasm, inputsJSON)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.inst.WitnessPath(), wtns, 0o644); err != nil {
		return fmt.Errorf("write witness file %s: %w", c.inst.WitnessPath(), err)
	}
	return c.tracker.RecordCalculated()
}

// Witness loads the witness vector that is current for this instance.
func (c *Circuit) Witness() (witness.Vector, error) {
	path, err := c.tracker.CurrentPath()
	if err != nil {
		return nil, err
	}
	return witness.ReadVector(path)
}

// OverrideWitness applies named signal overrides onto the current witness
// and persists the result as the modified witness file, which becomes
// authoritative for subsequent proving. The original witness file is never
// touched, so ResetWitness can always return to it.
func (c *Circuit) OverrideWitness(overrides map[string]*big.Int) error {
	current, err := c.Witness()
	if err != nil {
		return err
	}
	modified, err := witness.Apply(c.inst.SymPath(), current, overrides)
	if err != nil {
		return err
	}
	if err := witness.Write(c.inst.ModifiedWitnessPath(), modified, c.prime); err != nil {
		return err
	}
	log.Debugw("witness overridden", "circuit", c.inst.Manifest().Circuit,
		"signals", len(overrides), "state", c.tracker.State().String())
	return c.tracker.RecordModified()
}

// ResetWitness discards any modified witness, returning the instance to the
// pristine original. A no-op when nothing was overridden.
func (c *Circuit) ResetWitness() error {
	return c.tracker.Reset()
}

// Prove generates a proof over whichever witness file is current and
// persists proof.json / public.json into the working directory.
func (c *Circuit) Prove() (*rapidsnarktypes.ZKProof, error) {
	wtnsPath, err := c.tracker.CurrentPath()
	if err != nil {
		return nil, err
	}
	wtns, err := os.ReadFile(wtnsPath)
	if err != nil {
		return nil, fmt.Errorf("read witness file %s: %w", wtnsPath, err)
	}
	zkey, err := os.ReadFile(c.inst.ProvingKeyPath())
	if err != nil {
		return nil, fmt.Errorf("read proving key %s: %w", c.inst.ProvingKeyPath(), err)
	}
	proof, err := prover.Prove(zkey, wtns)
	if err != nil {
		return nil, err
	}
	proofJSON, pubSignalsJSON, err := prover.MarshalProof(proof)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(c.inst.ProofPath(), proofJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write proof %s: %w", c.inst.ProofPath(), err)
	}
	if err := os.WriteFile(c.inst.PublicSignalsPath(), pubSignalsJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write public signals %s: %w", c.inst.PublicSignalsPath(), err)
	}
	return proof, nil
}

// Verify checks a proof against the instance's verification key. A proof
// generated from an overridden witness that breaks the circuit's
// constraints verifies as false here; that outcome, not an error, is the
// contract for negative tests.
func (c *Circuit) Verify(proof *rapidsnarktypes.ZKProof) (bool, error) {
	vkey, err := os.ReadFile(c.inst.VerificationKeyPath())
	if err != nil {
		return false, fmt.Errorf("read verification key %s: %w", c.inst.VerificationKeyPath(), err)
	}
	return prover.Verify(vkey, proof)
}

// RenderVerifierContract renders the Solidity verifier for the instance's
// verification key and writes it into the working directory.
func (c *Circuit) RenderVerifierContract() (string, error) {
	vkey, err := os.ReadFile(c.inst.VerificationKeyPath())
	if err != nil {
		return "", fmt.Errorf("read verification key %s: %w", c.inst.VerificationKeyPath(), err)
	}
	contract, err := solidity.RenderGroth16Verifier(vkey)
	if err != nil {
		return "", err
	}
	path := c.inst.VerifierContractPath()
	if err := os.WriteFile(path, []byte(contract), 0o644); err != nil {
		return "", fmt.Errorf("write verifier contract %s: %w", path, err)
	}
	return path, nil
}

// Cleanup removes the instance working directory.
func (c *Circuit) Cleanup() error {
	return c.inst.Cleanup()
}
