// Package testutil provides stores, clocks and entity fixtures shared by
// the package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// NewStore opens a project database under t.TempDir with its clock
// stopped at Epoch. The store is closed when the test ends.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "project.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	clock := NewClock()
	s.SetClock(clock.Now)
	t.Cleanup(func() { s.Close() })
	return s
}

// Unit writes a process unit of the given type.
func Unit(t *testing.T, s *store.Store, id string, typ model.UnitType) model.ProcessUnit {
	t.Helper()
	u := model.ProcessUnit{ID: id, Name: "Unit " + id, Type: typ}
	if err := s.UpsertUnit(context.Background(), u); err != nil {
		t.Fatalf("UpsertUnit(%s) failed: %v", id, err)
	}
	return u
}

// Stream writes a liquid stream at 25 °C between two units. Either end may
// be empty.
func Stream(t *testing.T, s *store.Store, id, from, to string, flow float64, comp model.Composition) model.Stream {
	t.Helper()
	st := model.Stream{
		ID:              id,
		Name:            "Stream " + id,
		Phase:           model.PhaseLiquid,
		Temperature:     model.Float(25),
		FlowRate:        flow,
		Composition:     comp,
		SourceUnit:      from,
		DestinationUnit: to,
	}
	Put(t, s, st)
	return st
}

// Put writes a fully specified stream.
func Put(t *testing.T, s *store.Store, st model.Stream) {
	t.Helper()
	if err := s.UpsertStream(context.Background(), st); err != nil {
		t.Fatalf("UpsertStream(%s) failed: %v", st.ID, err)
	}
}

// Material writes a material with the given specific heat in kJ/(kg·K).
func Material(t *testing.T, s *store.Store, id string, cp float64) model.Material {
	t.Helper()
	m := model.Material{ID: id, Name: "Material " + id, SpecificHeat: cp}
	if err := s.UpsertMaterial(context.Background(), m); err != nil {
		t.Fatalf("UpsertMaterial(%s) failed: %v", id, err)
	}
	return m
}
