package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	out, err := CanonicalJSON(map[string]any{"b": 1, "a": 2.5, "c": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2.5,"b":1,"c":"x"}`, string(out))
}

func TestContentHashDeterministic(t *testing.T) {
	s := Stream{ID: "S1", FlowRate: 100, Composition: Composition{"A": 0.4, "B": 0.6}}

	h1, err := ContentHash(DomainCalc, s)
	require.NoError(t, err)
	h2, err := ContentHash(DomainCalc, s)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestContentHashDomainSeparation(t *testing.T) {
	v := map[string]string{"id": "S1"}
	h1, err := ContentHash(DomainCalc, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainChange, v)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestContentHashNormalizesUnicode(t *testing.T) {
	composed := Material{ID: "M1", Name: "caf\u00e9"}
	decomposed := Material{ID: "M1", Name: "cafe\u0301"}

	h1, err := ContentHash(DomainCalc, composed)
	require.NoError(t, err)
	h2, err := ContentHash(DomainCalc, decomposed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestChangeHashVariesWithOperation(t *testing.T) {
	h1, err := ChangeHash("S1", OpAdd, nil)
	require.NoError(t, err)
	h2, err := ChangeHash("S1", OpDelete, nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
