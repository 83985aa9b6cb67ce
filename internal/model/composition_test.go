package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionValidate(t *testing.T) {
	tests := []struct {
		name    string
		comp    Composition
		wantErr bool
	}{
		{"empty", Composition{}, false},
		{"exact", Composition{"A": 0.5, "B": 0.5}, false},
		{"within tolerance", Composition{"A": 0.6, "B": 0.405}, false},
		{"sum too low", Composition{"A": 0.5, "B": 0.4}, true},
		{"sum too high", Composition{"A": 0.7, "B": 0.4}, true},
		{"negative fraction", Composition{"A": 1.2, "B": -0.2}, true},
		{"nan", Composition{"A": math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comp.Validate(CompositionTolerance)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompositionWithoutRenormalizes(t *testing.T) {
	comp := Composition{"A": 0.5, "B": 0.3, "C": 0.2}

	out, removed := comp.Without("A")
	require.True(t, removed)

	assert.NotContains(t, out, "A")
	assert.InDelta(t, 1.0, out.Sum(), 1e-6)
	assert.InDelta(t, 0.6, out["B"], 1e-9)
	assert.InDelta(t, 0.4, out["C"], 1e-9)

	// original untouched
	assert.Equal(t, 0.5, comp["A"])
}

func TestCompositionWithoutMissing(t *testing.T) {
	comp := Composition{"A": 1.0}

	out, removed := comp.Without("Z")
	assert.False(t, removed)
	assert.Equal(t, comp, out)
}

func TestCompositionWithoutLastComponent(t *testing.T) {
	out, removed := Composition{"A": 1.0}.Without("A")
	assert.True(t, removed)
	assert.Empty(t, out)
}

func TestCompositionKeysSorted(t *testing.T) {
	comp := Composition{"water": 0.2, "ethanol": 0.5, "acid": 0.3}
	assert.Equal(t, []string{"acid", "ethanol", "water"}, comp.Keys())
}

func TestRenormalizationPropertyAcrossManyShapes(t *testing.T) {
	shapes := []Composition{
		{"A": 0.1, "B": 0.9},
		{"A": 0.33, "B": 0.33, "C": 0.34},
		{"A": 0.999, "B": 0.001},
		{"A": 0.25, "B": 0.25, "C": 0.25, "D": 0.25},
	}
	for _, c := range shapes {
		for _, k := range c.Keys() {
			out, _ := c.Without(k)
			if len(out) == 0 {
				continue
			}
			assert.InDelta(t, 1.0, out.Sum(), 1e-6, "removing %s from %v", k, c)
		}
	}
}
