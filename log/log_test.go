package log_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/circom-harness/log"
)

func TestLeveledHelpers(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "out.log")
	log.Init(log.LogLevelDebug, path)
	defer log.Init(log.LogLevelError, "stderr")

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")
	log.Debugf("debugf %d", 1)
	log.Infof("infof %d", 2)
	log.Warnf("warnf %d", 3)
	log.Errorf("errorf %d", 4)
	log.Debugw("debugw message", "key", "value")
	log.Infow("infow message", "key", "value")
	log.Warnw("warnw message", "key", "value")
	log.Errorw(fmt.Errorf("boom"), "errorw message")

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	out := string(data)
	for _, want := range []string{
		"debug message", "info message", "warn message", "error message",
		"debugf 1", "infof 2", "warnf 3", "errorf 4",
		"debugw message", "infow message", "warnw message", "errorw message",
		"boom",
	} {
		c.Assert(out, qt.Contains, want)
	}
}

func TestLevelFiltering(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "out.log")
	log.Init(log.LogLevelWarn, path)
	defer log.Init(log.LogLevelError, "stderr")
	c.Assert(log.Level(), qt.Equals, log.LogLevelWarn)

	log.Info("filtered out")
	log.Warn("kept")

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Not(qt.Contains), "filtered out")
	c.Assert(string(data), qt.Contains, "kept")
}
