// circom-harness is a developer CLI around the circom compiler and the
// rapidsnark proving backend: it compiles circuits, calculates and
// overrides witnesses, generates and verifies proofs, and renders the
// on-chain verifier contract.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/vocdoni/circom-harness/compiler"
	"github.com/vocdoni/circom-harness/harness"
	"github.com/vocdoni/circom-harness/log"
	"github.com/vocdoni/circom-harness/prover"
	"github.com/vocdoni/circom-harness/types"
)

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output)

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "missing command")
		os.Exit(2)
	}
	if err := run(context.Background(), args[0], cfg); err != nil {
		log.Errorw(err, args[0])
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg *Config) error {
	switch command {
	case "compile":
		return cmdCompile(ctx, cfg)
	case "witness":
		return cmdWitness(cfg)
	case "override":
		return cmdOverride(cfg)
	case "reset":
		return cmdReset(cfg)
	case "prove":
		return cmdProve(cfg)
	case "verify":
		return cmdVerify(cfg)
	case "contract":
		return cmdContract(cfg)
	case "version":
		return cmdVersion(ctx, cfg)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func compilerOptions(cfg *Config) compiler.Options {
	return compiler.Options{
		Binary:       cfg.Circom.Binary,
		Curve:        cfg.Circom.Curve,
		Optimization: cfg.Circom.OptLvl,
	}
}

func openCircuit(cfg *Config) (*harness.Circuit, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("a working directory is required (use --dir)")
	}
	return harness.Open(cfg.Dir)
}

func cmdCompile(ctx context.Context, cfg *Config) error {
	if cfg.Source == "" {
		return fmt.Errorf("a circom source file is required (use --source)")
	}
	name := cfg.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(cfg.Source), filepath.Ext(cfg.Source))
	}
	circuit, err := harness.Compile(ctx, cfg.BaseDir, name, cfg.Source, compilerOptions(cfg))
	if err != nil {
		return err
	}
	if cfg.Zkey != "" && cfg.Vkey != "" {
		zkey, err := os.ReadFile(cfg.Zkey)
		if err != nil {
			return fmt.Errorf("read proving key %s: %w", cfg.Zkey, err)
		}
		vkey, err := os.ReadFile(cfg.Vkey)
		if err != nil {
			return fmt.Errorf("read verification key %s: %w", cfg.Vkey, err)
		}
		if err := circuit.InstallKeys(zkey, vkey); err != nil {
			return err
		}
	}
	log.Infow("circuit compiled", "name", name, "dir", circuit.Instance().Dir())
	fmt.Println(circuit.Instance().Dir())
	return nil
}

func cmdWitness(cfg *Config) error {
	if cfg.Inputs == "" {
		return fmt.Errorf("an inputs JSON file is required (use --inputs)")
	}
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	inputsJSON, err := os.ReadFile(cfg.Inputs)
	if err != nil {
		return fmt.Errorf("read inputs %s: %w", cfg.Inputs, err)
	}
	inputs := map[string]*types.BigInt{}
	if err := json.Unmarshal(inputsJSON, &inputs); err != nil {
		return fmt.Errorf("decode inputs %s: %w", cfg.Inputs, err)
	}
	if err := circuit.CalculateWitness(inputs); err != nil {
		return err
	}
	log.Infow("witness calculated", "state", circuit.WitnessState().String())
	return nil
}

func cmdOverride(cfg *Config) error {
	if len(cfg.Set) == 0 {
		return fmt.Errorf("at least one override is required (use --set name=value)")
	}
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	overrides := map[string]*big.Int{}
	for _, pair := range cfg.Set {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid override %q, expected name=value", pair)
		}
		x, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok {
			return fmt.Errorf("invalid override value %q for %s", value, name)
		}
		overrides[strings.TrimSpace(name)] = x
	}
	if err := circuit.OverrideWitness(overrides); err != nil {
		return err
	}
	log.Infow("witness overridden", "signals", len(overrides),
		"state", circuit.WitnessState().String())
	return nil
}

func cmdReset(cfg *Config) error {
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	if err := circuit.ResetWitness(); err != nil {
		return err
	}
	log.Infow("witness reset", "state", circuit.WitnessState().String())
	return nil
}

func cmdProve(cfg *Config) error {
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	if _, err := circuit.Prove(); err != nil {
		return err
	}
	log.Infow("proof generated",
		"proof", circuit.Instance().ProofPath(),
		"public", circuit.Instance().PublicSignalsPath())
	return nil
}

func cmdVerify(cfg *Config) error {
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	proofJSON, err := os.ReadFile(circuit.Instance().ProofPath())
	if err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	pubJSON, err := os.ReadFile(circuit.Instance().PublicSignalsPath())
	if err != nil {
		return fmt.Errorf("read public signals: %w", err)
	}
	proof, err := prover.UnmarshalProof(proofJSON, pubJSON)
	if err != nil {
		return err
	}
	valid, err := circuit.Verify(proof)
	if err != nil {
		return err
	}
	fmt.Println(valid)
	if !valid {
		os.Exit(1)
	}
	return nil
}

func cmdContract(cfg *Config) error {
	circuit, err := openCircuit(cfg)
	if err != nil {
		return err
	}
	path, err := circuit.RenderVerifierContract()
	if err != nil {
		return err
	}
	log.Infow("verifier contract rendered", "path", path)
	return nil
}

func cmdVersion(ctx context.Context, cfg *Config) error {
	fmt.Printf("circom-harness v%s\n", Version)
	circomVersion, err := compiler.Version(ctx, cfg.Circom.Binary)
	if err != nil {
		return err
	}
	fmt.Println(circomVersion)
	return nil
}
