// Package values builds the vectors sent to the sort service and checks
// what comes back.
package values

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ErrInvalidCount is returned when a negative number of values is requested.
var ErrInvalidCount = errors.New("number of values must be >= 0")

// Source supplies uniformly distributed 32 bit words.
type Source interface {
	Uint32() uint32
}

type runtimeSource struct{}

func (runtimeSource) Uint32() uint32 { return rand.Uint32() }

// NewSource returns the runtime seeded generator for seed 0, and a
// reproducible PCG stream otherwise.
func NewSource(seed uint64) Source {
	if seed == 0 {
		return runtimeSource{}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns n signed integers covering the full 32 bit range.
func Generate(n int, src Source) ([]int32, error) {
	if n < 0 {
		return nil, fmt.Errorf("generate %d values: %w", n, ErrInvalidCount)
	}
	if src == nil {
		src = runtimeSource{}
	}
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(src.Uint32())
	}
	return vals, nil
}

// CheckSorted returns an error unless got is the non-decreasing
// permutation of want. want is not modified.
func CheckSorted(want, got []int32) error {
	if len(want) != len(got) {
		return fmt.Errorf("result has %d values, request had %d", len(got), len(want))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			return fmt.Errorf("result out of order at index %d: %d > %d", i, got[i-1], got[i])
		}
	}
	sorted := slices.Clone(want)
	slices.Sort(sorted)
	if i := mismatch(sorted, got); i >= 0 {
		return fmt.Errorf("result is not a permutation of the request: index %d is %d, expected %d", i, got[i], sorted[i])
	}
	return nil
}

func mismatch(a, b []int32) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
