package witness

import (
	"maps"
	"math/big"
	"slices"

	"github.com/vocdoni/circom-harness/symbols"
)

// Apply sets the named signals of the vector to the given replacement
// values and returns the result as a fresh vector; the input is never
// mutated, so the original witness stays intact for a later reset. Every
// override name is resolved against the symbol table at symPath before any
// value is written: if one or more names cannot be resolved, Apply fails
// atomically with a symbols.SignalsNotFoundError listing all of them
// (names are resolved in sorted order, so the error list is deterministic).
//
// Values are written as-is, without reduction or range checks against the
// field prime. An out-of-range value yields a witness that fails proof
// verification downstream, which is exactly what negative tests are after.
func Apply(symPath string, original Vector, overrides map[string]*big.Int) (Vector, error) {
	result := original.Clone()
	if len(overrides) == 0 {
		return result, nil
	}
	names := slices.Sorted(maps.Keys(overrides))
	indexes, err := symbols.Resolve(symPath, names)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		result[int(indexes[name])] = new(big.Int).Set(overrides[name])
	}
	return result, nil
}
