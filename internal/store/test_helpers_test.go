package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// fixedNow is the clock every test store starts with.
var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.SetClock(func() time.Time { return fixedNow })
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUnit writes a process unit with minimal required fields.
func createTestUnit(t *testing.T, s *Store, id string, typ model.UnitType) model.ProcessUnit {
	t.Helper()
	u := model.ProcessUnit{ID: id, Name: "Unit " + id, Type: typ}
	if err := s.UpsertUnit(context.Background(), u); err != nil {
		t.Fatalf("UpsertUnit(%s) failed: %v", id, err)
	}
	return u
}

// createTestStream writes a stream between two units.
func createTestStream(t *testing.T, s *Store, id, from, to string, flow float64, comp model.Composition) model.Stream {
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
	if err := s.UpsertStream(context.Background(), st); err != nil {
		t.Fatalf("UpsertStream(%s) failed: %v", id, err)
	}
	return st
}
