// Package compiler drives the external circom compiler. It invokes the
// binary, checks the expected artifacts were produced and moves them into
// the fixed file layout of a circuit working directory.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/circom-harness/config"
	"github.com/vocdoni/circom-harness/log"
)

// Options configure a compiler invocation. The zero value compiles with the
// default binary, the default curve and no simplification (-O0).
type Options struct {
	// Binary is the circom executable; looked up in $PATH when relative.
	Binary string
	// Curve selects the prime field (circom --prime), e.g. "bn128".
	Curve string
	// IncludeDirs are extra library search paths (circom -l).
	IncludeDirs []string
	// Optimization is the circom -O level (0, 1 or 2).
	Optimization int
}

func (o Options) binary() string {
	if o.Binary == "" {
		return config.DefaultCircomBinary
	}
	return o.Binary
}

func (o Options) curve() string {
	if o.Curve == "" {
		return config.DefaultCurve
	}
	return o.Curve
}

// Result holds the artifact paths produced by a successful compilation,
// normalized to the fixed names inside the output directory.
type Result struct {
	R1CSPath string
	SymPath  string
	WasmPath string
}

// Compile compiles the circuit at source into outDir, producing the
// constraint system, the symbol table and the witness-calculator WASM.
// Compilation is bounded by ctx; a cancelled context kills the subprocess.
func Compile(ctx context.Context, source, outDir string, opts Options) (*Result, error) {
	if _, err := config.CurvePrime(opts.curve()); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outDir, err)
	}

	args := []string{
		source,
		"--r1cs", "--wasm", "--sym",
		"-o", outDir,
		"--prime", opts.curve(),
		fmt.Sprintf("--O%d", opts.Optimization),
	}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-l", dir)
	}

	start := time.Now()
	log.Debugw("compiling circuit", "source", source, "out", outDir, "curve", opts.curve())
	cmd := exec.CommandContext(ctx, opts.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("circom %s: %w: %s", source, err, strings.TrimSpace(stderr.String()))
	}

	result, err := collectArtifacts(source, outDir)
	if err != nil {
		return nil, err
	}
	log.Debugw("circuit compiled", "source", source, "elapsed", time.Since(start).String())
	return result, nil
}

// collectArtifacts renames the circom outputs (named after the source file)
// to the fixed artifact names, pulling the WASM out of the <name>_js
// directory circom creates for the witness calculator.
func collectArtifacts(source, outDir string) (*Result, error) {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result := &Result{
		R1CSPath: filepath.Join(outDir, config.R1CSFileName),
		SymPath:  filepath.Join(outDir, config.SymFileName),
		WasmPath: filepath.Join(outDir, config.WasmFileName),
	}
	renames := []struct{ from, to string }{
		{filepath.Join(outDir, name+".r1cs"), result.R1CSPath},
		{filepath.Join(outDir, name+".sym"), result.SymPath},
		{filepath.Join(outDir, name+"_js", name+".wasm"), result.WasmPath},
	}
	for _, r := range renames {
		if _, err := os.Stat(r.from); err != nil {
			return nil, fmt.Errorf("compiler output %s missing: %w", r.from, err)
		}
		if err := os.Rename(r.from, r.to); err != nil {
			return nil, fmt.Errorf("move compiler output: %w", err)
		}
	}
	// The rest of the _js helper directory (generate_witness.js et al) is
	// for the node-based calculator and is not used here.
	if err := os.RemoveAll(filepath.Join(outDir, name+"_js")); err != nil {
		return nil, fmt.Errorf("clean compiler output: %w", err)
	}
	return result, nil
}

// Job is one circuit to compile in a CompileAll batch.
type Job struct {
	Source string
	OutDir string
}

// CompileAll compiles several circuits concurrently, at most limit at a
// time (limit <= 0 means no bound). Each job writes into its own output
// directory, so the jobs do not share any mutable state. The first failure
// cancels the remaining jobs.
func CompileAll(ctx context.Context, jobs []Job, opts Options, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, job := range jobs {
		g.Go(func() error {
			_, err := Compile(ctx, job.Source, job.OutDir, opts)
			return err
		})
	}
	return g.Wait()
}

// Version reports the installed circom compiler version.
func Version(ctx context.Context, binary string) (string, error) {
	if binary == "" {
		binary = config.DefaultCircomBinary
	}
	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("circom --version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
