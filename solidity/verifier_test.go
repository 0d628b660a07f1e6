package solidity

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func testVKey(t *testing.T, mutate func(*VerificationKey)) []byte {
	t.Helper()
	vk := &VerificationKey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  2,
		Alpha1:   []string{"11", "12", "1"},
		Beta2:    [][]string{{"21", "22"}, {"23", "24"}, {"1", "0"}},
		Gamma2:   [][]string{{"31", "32"}, {"33", "34"}, {"1", "0"}},
		Delta2:   [][]string{{"41", "42"}, {"43", "44"}, {"1", "0"}},
		IC: [][]string{
			{"51", "52", "1"},
			{"53", "54", "1"},
			{"55", "56", "1"},
		},
	}
	if mutate != nil {
		mutate(vk)
	}
	data, err := json.Marshal(vk)
	qt.Assert(t, err, qt.IsNil)
	return data
}

func TestRenderGroth16Verifier(t *testing.T) {
	c := qt.New(t)
	contract, err := RenderGroth16Verifier(testVKey(t, nil))
	c.Assert(err, qt.IsNil)

	c.Assert(contract, qt.Contains, "contract Groth16Verifier")
	c.Assert(contract, qt.Contains, "uint256 constant alphax = 11;")
	c.Assert(contract, qt.Contains, "uint256 constant betax2 = 22;")
	c.Assert(contract, qt.Contains, "uint256 constant IC0x = 51;")
	c.Assert(contract, qt.Contains, "uint256 constant IC2y = 56;")
	// one calldata slot per public signal
	c.Assert(contract, qt.Contains, "uint[2] calldata _pubSignals")
}

func TestRenderRejectsNonGroth16(t *testing.T) {
	c := qt.New(t)
	_, err := RenderGroth16Verifier(testVKey(t, func(vk *VerificationKey) {
		vk.Protocol = "plonk"
	}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "plonk")
}

func TestRenderRejectsNonBN128(t *testing.T) {
	c := qt.New(t)
	_, err := RenderGroth16Verifier(testVKey(t, func(vk *VerificationKey) {
		vk.Curve = "bls12381"
	}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "bls12381")
}

func TestRenderRejectsICMismatch(t *testing.T) {
	c := qt.New(t)
	_, err := RenderGroth16Verifier(testVKey(t, func(vk *VerificationKey) {
		vk.NPublic = 5
	}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "IC")
}

func TestRenderRejectsGarbage(t *testing.T) {
	c := qt.New(t)
	_, err := RenderGroth16Verifier([]byte("not json"))
	c.Assert(err, qt.IsNotNil)
}
