package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

func TestMaterial_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m := model.Material{
		ID:           "M-EtOH",
		Name:         "Ethanol",
		Formula:      "C2H6O",
		CASNumber:    "64-17-5",
		MolarMass:    46.07,
		SpecificHeat: 2.44,
		Quality:      map[string]float64{"purity": 99.5},
		Properties:   map[string]string{"grade": "industrial"},
	}
	require.NoError(t, s.UpsertMaterial(ctx, m))

	got, err := s.GetMaterial(ctx, "M-EtOH")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	m.SpecificHeat = 2.5
	require.NoError(t, s.UpsertMaterial(ctx, m))
	got, err = s.GetMaterial(ctx, "M-EtOH")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.SpecificHeat)
}

func TestMaterial_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetMaterial(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMaterial_ValidationRejected(t *testing.T) {
	s := createTestStore(t)

	err := s.UpsertMaterial(context.Background(), model.Material{ID: "M1"})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))

	list, err := s.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestMaterial_Delete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertMaterial(ctx, model.Material{ID: "A", Name: "A"}))

	removed, err := s.DeleteMaterial(ctx, "A")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteMaterial(ctx, "A")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStream_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st := createTestStream(t, s, "S1", "U1", "U2", 100, model.Composition{"A": 0.25, "B": 0.75})

	got, err := s.GetStream(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestStream_NullTemperature(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertStream(ctx, model.Stream{ID: "S1", FlowRate: 10}))

	got, err := s.GetStream(ctx, "S1")
	require.NoError(t, err)
	assert.Nil(t, got.Temperature)
}

func TestStream_CompositionValidated(t *testing.T) {
	s := createTestStore(t)

	err := s.UpsertStream(context.Background(), model.Stream{
		ID:          "S1",
		FlowRate:    10,
		Composition: model.Composition{"A": 0.5, "B": 0.3},
	})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestStreamsForUnit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestStream(t, s, "S2", "U1", "U2", 10, nil)
	createTestStream(t, s, "S1", "", "U1", 10, nil)
	createTestStream(t, s, "S3", "U2", "", 10, nil)

	streams, err := s.StreamsForUnit(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "S1", streams[0].ID)
	assert.Equal(t, "S2", streams[1].ID)

	streams, err = s.StreamsForUnit(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestStreamsContainingMaterial_TracksUpdates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestStream(t, s, "S1", "U1", "U2", 10, model.Composition{"A": 1})
	createTestStream(t, s, "S2", "U1", "U2", 10, model.Composition{"A": 0.5, "B": 0.5})

	streams, err := s.StreamsContainingMaterial(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, streams, 2)

	// Rewriting S2 without A drops its membership row.
	createTestStream(t, s, "S2", "U1", "U2", 10, model.Composition{"B": 1})
	streams, err = s.StreamsContainingMaterial(ctx, "A")
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "S1", streams[0].ID)
}

func TestRemoveMaterialFromStreams_Renormalizes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestStream(t, s, "S1", "U1", "U2", 100, model.Composition{"A": 0.2, "B": 0.3, "C": 0.5})
	createTestStream(t, s, "S2", "U1", "U2", 100, model.Composition{"B": 1})

	ids, err := s.RemoveMaterialFromStreams(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, ids)

	got, err := s.GetStream(ctx, "S1")
	require.NoError(t, err)
	assert.NotContains(t, got.Composition, "A")
	assert.InDelta(t, 1.0, got.Composition.Sum(), 1e-6)
	assert.InDelta(t, 0.375, got.Composition["B"], 1e-9)
	assert.InDelta(t, 0.625, got.Composition["C"], 1e-9)

	streams, err := s.StreamsContainingMaterial(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestUnit_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	u := model.ProcessUnit{
		ID:          "R-101",
		Name:        "Reactor",
		Type:        model.UnitReactor,
		Description: "main reactor",
		Position:    model.Position{X: 120, Y: 80},
		Parameters:  map[string]any{model.ParamReactionHeat: 500.0},
	}
	require.NoError(t, s.UpsertUnit(ctx, u))

	got, err := s.GetUnit(ctx, "R-101")
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.Equal(t, 500.0, got.ReactionHeat())
}

func TestUnit_DefaultType(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUnit(ctx, model.ProcessUnit{ID: "U1", Name: "U1"}))

	got, err := s.GetUnit(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, model.UnitOther, got.Type)
}

func TestDeleteUnit_CascadesBalances(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestUnit(t, s, "U1", model.UnitTank)
	require.NoError(t, s.UpsertMaterialBalance(ctx, model.NewMaterialBalance("U1")))
	require.NoError(t, s.UpsertHeatBalance(ctx, model.HeatBalance{UnitID: "U1"}))
	require.NoError(t, s.UpsertWaterBalance(ctx, model.WaterBalance{UnitID: "U1"}))

	removed, err := s.DeleteUnit(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.GetMaterialBalance(ctx, "U1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetHeatBalance(ctx, "U1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetWaterBalance(ctx, "U1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEquipment_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	u := createTestUnit(t, s, "P-1", model.UnitPump)
	e := model.EquipmentFromUnit(u)
	e.UtilityRequirements = map[string]string{"power": "15 kW"}
	require.NoError(t, s.UpsertEquipment(ctx, e))

	got, err := s.GetEquipment(ctx, "EQ-P-1")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	list, err := s.ListEquipment(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnitsForEquipment(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	u := createTestUnit(t, s, "P-1", model.UnitPump)
	require.NoError(t, s.UpsertEquipment(ctx, model.EquipmentFromUnit(u)))
	require.NoError(t, s.UpsertEquipment(ctx, model.Equipment{
		ID:             "EQ-orphan",
		Type:           model.EquipmentBoiler,
		Specifications: map[string]string{model.SpecSourceUnit: "gone"},
	}))

	units, err := s.UnitsForEquipment(ctx, "EQ-P-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P-1"}, units)

	units, err = s.UnitsForEquipment(ctx, "EQ-orphan")
	require.NoError(t, err)
	assert.Empty(t, units)

	units, err = s.UnitsForEquipment(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, units)
}
