package model

import (
	"fmt"
	"math"
	"sort"
)

// CompositionTolerance is the allowed deviation of a composition sum from 1.
const CompositionTolerance = 0.01

// Composition maps material ids to mass fractions.
type Composition map[string]float64

// Sum returns the total of all fractions.
func (c Composition) Sum() float64 {
	var total float64
	for _, f := range c {
		total += f
	}
	return total
}

// Keys returns the material ids in sorted order.
func (c Composition) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contains reports whether the composition lists materialID.
func (c Composition) Contains(materialID string) bool {
	_, ok := c[materialID]
	return ok
}

// Validate checks every fraction is within [0, 1] and the sum is 1 ± tol.
// An empty composition is valid: it describes a stream whose contents are
// not yet specified.
func (c Composition) Validate(tol float64) error {
	if len(c) == 0 {
		return nil
	}
	for _, k := range c.Keys() {
		f := c[k]
		if math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Errorf("fraction of %q out of range [0,1]: %g", k, f)
		}
	}
	if sum := c.Sum(); math.Abs(sum-1) > tol {
		return fmt.Errorf("fractions sum to %.4f, want 1 ± %g", sum, tol)
	}
	return nil
}

// Without returns a copy with materialID removed and the remaining fractions
// rescaled to sum to 1. The bool is false when materialID was not present.
// When nothing with a positive fraction remains the remainder is returned as is.
func (c Composition) Without(materialID string) (Composition, bool) {
	if !c.Contains(materialID) {
		return c.Clone(), false
	}
	out := make(Composition, len(c)-1)
	for k, f := range c {
		if k != materialID {
			out[k] = f
		}
	}
	return out.Normalized(), true
}

// Normalized returns a copy whose fractions sum to 1.
func (c Composition) Normalized() Composition {
	out := c.Clone()
	total := out.Sum()
	if total <= 0 {
		return out
	}
	for k, f := range out {
		out[k] = f / total
	}
	return out
}

// Clone returns an independent copy. Clone of nil is an empty composition.
func (c Composition) Clone() Composition {
	out := make(Composition, len(c))
	for k, f := range c {
		out[k] = f
	}
	return out
}
