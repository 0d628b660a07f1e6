package symbols

import (
	"errors"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestResolve(t *testing.T) {
	c := qt.New(t)
	path := writeSymFile(t, multiplierSym)

	indexes, err := Resolve(path, []string{"main.a", "main.out"})
	c.Assert(err, qt.IsNil)
	c.Assert(indexes["main.out"], qt.Equals, int64(1))
	c.Assert(indexes["main.a"], qt.Equals, int64(2))
	// only the requested names come back
	c.Assert(indexes, qt.HasLen, 2)
}

func TestResolveReturnsPrivateMap(t *testing.T) {
	c := qt.New(t)
	path := writeSymFile(t, multiplierSym)

	first, err := Resolve(path, []string{"main.a", "main.b"})
	c.Assert(err, qt.IsNil)
	// a caller mutating its result must not corrupt later resolutions
	// through the shared cache
	first["main.a"] = 99
	delete(first, "main.b")

	second, err := Resolve(path, []string{"main.a", "main.b"})
	c.Assert(err, qt.IsNil)
	c.Assert(second["main.a"], qt.Equals, int64(2))
	c.Assert(second["main.b"], qt.Equals, int64(3))
}

func TestResolveBatchesAllMissingNames(t *testing.T) {
	c := qt.New(t)
	path := writeSymFile(t, multiplierSym)

	_, err := Resolve(path, []string{"main.c", "main.a", "main.d", "main.e"})
	c.Assert(err, qt.IsNotNil)

	var notFound *SignalsNotFoundError
	c.Assert(errors.As(err, &notFound), qt.IsTrue)
	// every missing name, in the order supplied, in one error
	c.Assert(notFound.Names, qt.DeepEquals, []string{"main.c", "main.d", "main.e"})
	c.Assert(err.Error(), qt.Contains, "main.c, main.d, main.e")
	c.Assert(err.Error(), qt.Contains, path)
}

func TestResolveOptimizedSignalIsNotFound(t *testing.T) {
	c := qt.New(t)
	path := writeSymFile(t, multiplierSym)

	// main.tmp exists in the table with a negative index, main.ghost does
	// not exist at all; both must be reported identically
	_, err := Resolve(path, []string{"main.tmp", "main.ghost"})
	var notFound *SignalsNotFoundError
	c.Assert(errors.As(err, &notFound), qt.IsTrue)
	c.Assert(notFound.Names, qt.DeepEquals, []string{"main.tmp", "main.ghost"})
}

func TestIndexMapCacheInvalidation(t *testing.T) {
	c := qt.New(t)
	path := writeSymFile(t, multiplierSym)

	first, err := IndexMap(path)
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.HasLen, 3)

	// rewriting the file must invalidate the cached map
	err = os.WriteFile(path, []byte("1,1,1,main.other\n"), 0o644)
	c.Assert(err, qt.IsNil)
	// make sure the mtime moves even on coarse-grained filesystems
	future := time.Now().Add(time.Second)
	c.Assert(os.Chtimes(path, future, future), qt.IsNil)

	second, err := IndexMap(path)
	c.Assert(err, qt.IsNil)
	c.Assert(second, qt.HasLen, 1)
	_, ok := second["main.other"]
	c.Assert(ok, qt.IsTrue)
}

func TestResolveMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := Resolve("does-not-exist.sym", []string{"main.a"})
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "does-not-exist.sym")
}
