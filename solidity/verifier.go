// Package solidity renders an on-chain Groth16 verifier contract from a
// snarkjs-format verification key, so a circuit's proofs can be checked on
// EVM chains. Only the bn128 curve is supported: the EVM pairing
// precompiles work over that curve alone.
package solidity

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/verifier_groth16.sol.tmpl
var groth16Template string

// VerificationKey is the subset of the snarkjs verification-key JSON the
// verifier contract needs. Coordinates are decimal strings straight from
// the key file; they are substituted verbatim into the contract.
type VerificationKey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha1   []string   `json:"vk_alpha_1"`
	Beta2    [][]string `json:"vk_beta_2"`
	Gamma2   [][]string `json:"vk_gamma_2"`
	Delta2   [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

func (vk *VerificationKey) validate() error {
	if vk.Protocol != "groth16" {
		return fmt.Errorf("unsupported protocol %q, only groth16 verifiers can be rendered", vk.Protocol)
	}
	if vk.Curve != "bn128" {
		return fmt.Errorf("unsupported curve %q, the EVM pairing precompiles require bn128", vk.Curve)
	}
	if len(vk.Alpha1) < 2 || len(vk.Beta2) < 2 || len(vk.Gamma2) < 2 || len(vk.Delta2) < 2 {
		return fmt.Errorf("verification key is missing curve points")
	}
	if len(vk.IC) != vk.NPublic+1 {
		return fmt.Errorf("verification key has %d IC points, expected %d", len(vk.IC), vk.NPublic+1)
	}
	for i, p := range vk.IC {
		if len(p) < 2 {
			return fmt.Errorf("IC point %d is truncated", i)
		}
	}
	return nil
}

// RenderGroth16Verifier renders the Solidity verifier contract for the
// given snarkjs verification-key JSON.
func RenderGroth16Verifier(vkeyJSON []byte) (string, error) {
	vk := &VerificationKey{}
	if err := json.Unmarshal(vkeyJSON, vk); err != nil {
		return "", fmt.Errorf("decode verification key: %w", err)
	}
	if err := vk.validate(); err != nil {
		return "", err
	}
	tmpl, err := template.New("verifier").Funcs(template.FuncMap{
		// calldata offset of the i-th public signal (1-based in IC terms)
		"pubOffset": func(i int) int { return (i - 1) * 32 },
	}).Parse(groth16Template)
	if err != nil {
		return "", fmt.Errorf("parse verifier template: %w", err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, vk); err != nil {
		return "", fmt.Errorf("render verifier template: %w", err)
	}
	return out.String(), nil
}
