package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vocdoni/circom-harness/config"
	"github.com/vocdoni/circom-harness/internal"
)

const (
	defaultBaseDir   = ".circom-harness"
	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
)

// Version is the build version, set at build time with -ldflags
var Version = internal.Version

// Config holds the CLI configuration, collected from flags and environment.
type Config struct {
	Circom  CircomConfig
	Log     LogConfig
	BaseDir string `mapstructure:"basedir"`
	Dir     string `mapstructure:"dir"`
	Name    string `mapstructure:"name"`
	Source  string `mapstructure:"source"`
	Inputs  string `mapstructure:"inputs"`
	Zkey    string `mapstructure:"zkey"`
	Vkey    string `mapstructure:"vkey"`
	Set     []string
}

// CircomConfig holds the external compiler configuration.
type CircomConfig struct {
	Binary string `mapstructure:"binary"`
	Curve  string `mapstructure:"curve"`
	OptLvl int    `mapstructure:"optlvl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables, and defaults.
func loadConfig() (*Config, []string, error) {
	v := viper.New()

	v.SetDefault("circom.binary", config.DefaultCircomBinary)
	v.SetDefault("circom.curve", config.DefaultCurve)
	v.SetDefault("circom.optlvl", 1)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("basedir", defaultBaseDir)

	flag.String("circom.binary", config.DefaultCircomBinary, "circom compiler executable")
	flag.String("circom.curve", config.DefaultCurve, "curve to compile for (bn128, bls12381)")
	flag.Int("circom.optlvl", 1, "circom optimization level (0, 1 or 2)")
	flag.StringP("basedir", "b", defaultBaseDir, "base directory for circuit working directories")
	flag.StringP("dir", "d", "", "existing circuit working directory")
	flag.StringP("name", "n", "", "circuit name (defaults to the source file name)")
	flag.StringP("source", "s", "", "circom source file to compile")
	flag.StringP("inputs", "i", "", "path to a circom inputs JSON file")
	flag.String("zkey", "", "path to a proving key produced by the setup tooling")
	flag.String("vkey", "", "path to a snarkjs verification key JSON")
	flag.StringSlice("set", nil, "witness override as name=value, repeatable")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "circom-harness v%s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: circom-harness <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  compile    compile a circom source into a fresh working directory\n")
		fmt.Fprintf(os.Stderr, "  witness    calculate the witness from an inputs file\n")
		fmt.Fprintf(os.Stderr, "  override   apply signal overrides onto the current witness\n")
		fmt.Fprintf(os.Stderr, "  reset      discard the modified witness\n")
		fmt.Fprintf(os.Stderr, "  prove      generate a proof over the current witness\n")
		fmt.Fprintf(os.Stderr, "  verify     verify the stored proof\n")
		fmt.Fprintf(os.Stderr, "  contract   render the Solidity verifier contract\n")
		fmt.Fprintf(os.Stderr, "  version    print toolkit and compiler versions\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  except for dashes (-) and dots (.) which are replaced by underscores (_).\n")
		fmt.Fprintf(os.Stderr, "  For example, CIRCOM_HARNESS_CIRCOM_BINARY or CIRCOM_HARNESS_BASEDIR\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  circom-harness compile -s multiplier.circom\n")
		fmt.Fprintf(os.Stderr, "  circom-harness witness -d .circom-harness/multiplier-<id> -i inputs.json\n")
		fmt.Fprintf(os.Stderr, "  circom-harness override -d <dir> --set main.a=10 --set main.out=150\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	v.SetEnvPrefix("CIRCOM_HARNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Set = v.GetStringSlice("set")

	return cfg, flag.Args(), nil
}
