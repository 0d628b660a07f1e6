// Package prover wraps the rapidsnark proving backend: witness calculation
// from a circuit's WASM, Groth16 proof generation from a zkey, and proof
// verification against a snarkjs-format verification key. Proof contents
// are opaque at this layer.
package prover

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iden3/go-rapidsnark/prover"
	rapidsnarktypes "github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"
	"github.com/iden3/go-rapidsnark/witness"

	"github.com/vocdoni/circom-harness/log"
)

// proverMu serializes calls to the rapidsnark Groth16 prover, which is not
// safe for concurrent use (CGO/native code can crash or corrupt state when
// run in parallel).
var proverMu sync.Mutex

// CalculateWitness runs the circuit's witness calculator WASM over the
// given circom JSON inputs and returns the witness in binary .wtns format,
// ready to be written to disk or fed to Prove.
func CalculateWitness(wasm, inputsJSON []byte) ([]byte, error) {
	inputs, err := witness.ParseInputs(inputsJSON)
	if err != nil {
		return nil, fmt.Errorf("parse circom inputs: %w", err)
	}
	calc, err := witness.NewCircom2WitnessCalculator(wasm, true)
	if err != nil {
		return nil, fmt.Errorf("instantiate witness calculator: %w", err)
	}
	wtns, err := calc.CalculateWTNSBin(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("calculate witness: %w", err)
	}
	return wtns, nil
}

// Prove generates a Groth16 proof for the witness using the proving key
// (zkey). It returns the proof together with the public signals.
func Prove(zkey, wtns []byte) (*rapidsnarktypes.ZKProof, error) {
	proverMu.Lock()
	proofJSON, pubSignalsJSON, err := prover.Groth16ProverRaw(zkey, wtns)
	proverMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("groth16 prover: %w", err)
	}
	proofData := &rapidsnarktypes.ProofData{}
	if err := json.Unmarshal([]byte(proofJSON), proofData); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	var pubSignals []string
	if err := json.Unmarshal([]byte(pubSignalsJSON), &pubSignals); err != nil {
		return nil, fmt.Errorf("decode public signals: %w", err)
	}
	return &rapidsnarktypes.ZKProof{Proof: proofData, PubSignals: pubSignals}, nil
}

// Verify checks the proof against a snarkjs-format verification key. It
// returns false (with a nil error) when the proof simply does not verify,
// so negative-testing callers can assert on the boolean. A key that cannot
// be decoded is an error, not an invalid proof.
func Verify(vkey []byte, proof *rapidsnarktypes.ZKProof) (bool, error) {
	if proof == nil || proof.Proof == nil {
		return false, fmt.Errorf("nil proof")
	}
	var vkHead struct {
		Protocol string `json:"protocol"`
	}
	if err := json.Unmarshal(vkey, &vkHead); err != nil {
		return false, fmt.Errorf("decode verification key: %w", err)
	}
	if vkHead.Protocol == "" {
		return false, fmt.Errorf("malformed verification key: missing protocol")
	}
	if err := verifier.VerifyGroth16(*proof, vkey); err != nil {
		log.Debugw("proof verification failed", "error", err.Error())
		return false, nil
	}
	return true, nil
}

// MarshalProof encodes the proof and its public signals as the two JSON
// documents (proof.json, public.json) that snarkjs tooling expects.
func MarshalProof(proof *rapidsnarktypes.ZKProof) (proofJSON, pubSignalsJSON []byte, err error) {
	proofJSON, err = json.MarshalIndent(proof.Proof, "", " ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode proof: %w", err)
	}
	pubSignalsJSON, err = json.MarshalIndent(proof.PubSignals, "", " ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode public signals: %w", err)
	}
	return proofJSON, pubSignalsJSON, nil
}

// UnmarshalProof decodes the proof.json / public.json pair back into a
// ZKProof.
func UnmarshalProof(proofJSON, pubSignalsJSON []byte) (*rapidsnarktypes.ZKProof, error) {
	proofData := &rapidsnarktypes.ProofData{}
	if err := json.Unmarshal(proofJSON, proofData); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	var pubSignals []string
	if err := json.Unmarshal(pubSignalsJSON, &pubSignals); err != nil {
		return nil, fmt.Errorf("decode public signals: %w", err)
	}
	return &rapidsnarktypes.ZKProof{Proof: proofData, PubSignals: pubSignals}, nil
}
