package symbols

import (
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SignalsNotFoundError reports every requested signal name that could not be
// resolved to a witness position, in the order the names were supplied. A
// name that exists in the symbol table but was optimized away (negative
// witness index) is reported the same as a name that never existed.
type SignalsNotFoundError struct {
	Path  string
	Names []string
}

func (e *SignalsNotFoundError) Error() string {
	return fmt.Sprintf("signals not found in %s: %s", e.Path, strings.Join(e.Names, ", "))
}

// indexMapCacheSize bounds the parsed symbol tables kept in memory. A
// harness run touches a handful of circuits at most.
const indexMapCacheSize = 16

type cachedIndexMap struct {
	modTime int64
	size    int64
	indexes map[string]int64
}

var indexMapCache, _ = lru.New[string, cachedIndexMap](indexMapCacheSize)

// IndexMap builds the signal-name-to-witness-index map for the symbol table
// at path, covering every signal that still has a witness slot. The result
// is cached per path and invalidated when the file changes on disk; callers
// must treat it as read-only.
func IndexMap(path string) (map[string]int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat symbol table %s: %w", path, err)
	}
	if cached, ok := indexMapCache.Get(path); ok {
		if cached.modTime == stat.ModTime().UnixNano() && cached.size == stat.Size() {
			return cached.indexes, nil
		}
	}
	indexes := make(map[string]int64)
	if err := Each(path, func(e *Entry) bool {
		if e.WitnessIndex >= 0 {
			indexes[e.Name] = e.WitnessIndex
		}
		return true
	}); err != nil {
		return nil, err
	}
	indexMapCache.Add(path, cachedIndexMap{
		modTime: stat.ModTime().UnixNano(),
		size:    stat.Size(),
		indexes: indexes,
	})
	return indexes, nil
}

// Resolve maps every requested signal name to its witness-vector position
// using the symbol table at path. If any name cannot be resolved the whole
// call fails with a single SignalsNotFoundError listing all missing names,
// so a caller with several bad override keys sees every mistake at once.
// The returned map holds only the requested names and is the caller's to
// mutate; the cached table behind it stays private.
func Resolve(path string, names []string) (map[string]int64, error) {
	indexes, err := IndexMap(path)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]int64, len(names))
	var missing []string
	for _, name := range names {
		index, ok := indexes[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		resolved[name] = index
	}
	if len(missing) > 0 {
		return nil, &SignalsNotFoundError{Path: path, Names: missing}
	}
	return resolved, nil
}
