// Package config provides the toolkit defaults: external binary names, the
// fixed artifact file names inside a circuit working directory, and the
// registry of supported curves with their scalar-field moduli.
package config

import (
	"fmt"
	"math/big"

	fr_bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	// DefaultCircomBinary is the compiler executable looked up in $PATH
	// unless an absolute path is configured.
	DefaultCircomBinary = "circom"

	// DefaultCurve is the curve circom compiles for when none is requested.
	DefaultCurve = "bn128"

	// Artifact file names inside a circuit instance working directory.
	// The compiler writes the first three; the proving backend and the
	// witness subsystem produce the rest.
	R1CSFileName            = "circuit.r1cs"
	SymFileName             = "circuit.sym"
	WasmFileName            = "circuit.wasm"
	ProvingKeyFileName      = "circuit.zkey"
	VerificationKeyFileName = "verification_key.json"
	WitnessFileName         = "witness.wtns"
	ModifiedWitnessFileName = "witness_modified.wtns"
	ProofFileName           = "proof.json"
	PublicSignalsFileName   = "public.json"
	ManifestFileName        = "manifest.cbor"
	VerifierContractName    = "verifier.sol"
)

// CurvePrimes maps the circom curve names to the scalar-field modulus of the
// curve, i.e. the prime the witness elements live in.
var CurvePrimes = map[string]*big.Int{
	"bn128":    fr_bn254.Modulus(),
	"bls12381": fr_bls12381.Modulus(),
}

// CurvePrime returns the witness field modulus for a circom curve name.
func CurvePrime(curve string) (*big.Int, error) {
	prime, ok := CurvePrimes[curve]
	if !ok {
		return nil, fmt.Errorf("unsupported curve %q", curve)
	}
	return new(big.Int).Set(prime), nil
}
