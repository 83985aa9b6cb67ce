package balance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
	"github.com/virmuran/ProcessDesignPro/internal/testutil"
)

func TestStreamHeat(t *testing.T) {
	materials := map[string]model.Material{
		"water":  {ID: "water", SpecificHeat: 4.18},
		"solids": {ID: "solids"},
	}
	s := model.Stream{
		ID:          "S1",
		FlowRate:    3600,
		Temperature: model.Float(75),
		Composition: model.Composition{"water": 0.5, "solids": 0.3, "unknown": 0.2},
	}

	// 0.5 kg/s × 4.18 × 50 K; components without cp contribute nothing.
	assert.InDelta(t, 104.5, balance.StreamHeat(s, materials, 25), 1e-9)
}

func TestStreamHeat_NoTemperature(t *testing.T) {
	materials := map[string]model.Material{"water": {ID: "water", SpecificHeat: 4.18}}
	s := model.Stream{ID: "S1", FlowRate: 3600, Composition: model.Composition{"water": 1}}

	assert.Equal(t, 0.0, balance.StreamHeat(s, materials, 25))
}

func TestUnitHeat_ReactionHeatOnly(t *testing.T) {
	unit := model.ProcessUnit{
		ID:         "R1",
		Type:       model.UnitReactor,
		Parameters: map[string]any{model.ParamReactionHeat: 500.0},
	}

	hb := balance.UnitHeat(unit, nil, nil, balance.DefaultParams())

	require.NotNil(t, hb.Result)
	assert.Equal(t, 500.0, hb.Result.TotalInput)
	assert.Equal(t, 25.0, hb.HeatLoss)
	assert.Equal(t, 500.0, hb.InputHeat[balance.HeatKeyReaction])
	assert.Equal(t, 25.0, hb.OutputHeat[balance.HeatKeyLoss])
	assert.Equal(t, model.StatusUnbalanced, hb.Status)
	require.NotNil(t, hb.Efficiency)
	assert.InDelta(t, 0.0, *hb.Efficiency, 1e-9)
}

func TestUnitHeat_StreamsByDirection(t *testing.T) {
	materials := map[string]model.Material{"A": {ID: "A", SpecificHeat: 2}}
	unit := model.ProcessUnit{ID: "HX", Type: model.UnitHeatExchanger}
	streams := []model.Stream{
		{ID: "IN", FlowRate: 3600, Temperature: model.Float(125), Composition: model.Composition{"A": 1}, DestinationUnit: "HX"},
		{ID: "OUT", FlowRate: 3600, Temperature: model.Float(75), Composition: model.Composition{"A": 1}, SourceUnit: "HX"},
		{ID: "COLD", FlowRate: 3600, Composition: model.Composition{"A": 1}, SourceUnit: "HX"},
	}

	hb := balance.UnitHeat(unit, streams, materials, balance.DefaultParams())

	assert.Equal(t, map[string]float64{"stream_IN": 200}, hb.InputHeat)
	assert.InDelta(t, 100.0, hb.OutputHeat["stream_OUT"], 1e-9)
	assert.InDelta(t, 10.0, hb.OutputHeat[balance.HeatKeyLoss], 1e-9)
	assert.NotContains(t, hb.OutputHeat, "stream_COLD", "streams without temperature are skipped")
	assert.InDelta(t, 110.0, hb.Result.TotalOutput, 1e-9)
	assert.InDelta(t, -90.0, hb.Result.Difference, 1e-9)
	require.NotNil(t, hb.Efficiency)
	assert.InDelta(t, 50.0, *hb.Efficiency, 1e-9)
}

func TestUnitHeat_AbsoluteTolerance(t *testing.T) {
	materials := map[string]model.Material{"A": {ID: "A", SpecificHeat: 1}}
	unit := model.ProcessUnit{ID: "U1", Type: model.UnitMixer}
	streams := []model.Stream{
		{ID: "IN", FlowRate: 3600, Temperature: model.Float(26), Composition: model.Composition{"A": 1}, DestinationUnit: "U1"},
	}
	p := balance.DefaultParams()
	p.HeatLossFraction = 1

	// 1 kW in, booked entirely as loss: output equals input.
	hb := balance.UnitHeat(unit, streams, materials, p)
	assert.Equal(t, model.StatusCalculated, hb.Status)

	p.HeatLossFraction = 0.98
	hb = balance.UnitHeat(unit, streams, materials, p)
	assert.Equal(t, model.StatusUnbalanced, hb.Status)
}

func TestCalculatorHeat_ReactionHeatWithoutStreams(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	require.NoError(t, s.UpsertUnit(ctx, model.ProcessUnit{
		ID:         "R1",
		Name:       "Reactor",
		Type:       model.UnitReactor,
		Parameters: map[string]any{model.ParamReactionHeat: 500.0},
	}))

	rec := notify.NewRecorder()
	out := balance.NewCalculator(s, balance.WithNotifier(rec)).Heat(ctx, "R1")
	require.True(t, out.Computed(), "outcome: %+v", out)

	hb, err := s.GetHeatBalance(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, hb.Result.TotalInput)
	assert.Equal(t, 25.0, hb.HeatLoss)
	assert.Equal(t, model.StatusUnbalanced, hb.Status)

	calcs := rec.Calculations(string(balance.CalcHeat))
	require.Len(t, calcs, 1)
	assert.Equal(t, "R1", calcs[0].UnitID)
}

func TestCalculatorHeat_BareUnitIsSkipped(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	testutil.Unit(t, s, "LONE", model.UnitTank)

	rec := notify.NewRecorder()
	out := balance.NewCalculator(s, balance.WithNotifier(rec)).Heat(ctx, "LONE")

	assert.True(t, out.Skipped(), "outcome: %+v", out)
	assert.Equal(t, balance.ErrCodeNoStreams, balance.CodeOf(out.Err))
	assert.Empty(t, rec.Events())

	_, err := s.GetHeatBalance(ctx, "LONE")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCalculatorHeat_UsesStoredMaterials(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	testutil.Unit(t, s, "U1", model.UnitHeatExchanger)
	testutil.Material(t, s, "A", 2)
	testutil.Put(t, s, model.Stream{
		ID:              "S1",
		FlowRate:        1800,
		Temperature:     model.Float(45),
		Composition:     model.Composition{"A": 1},
		DestinationUnit: "U1",
	})

	out := balance.NewCalculator(s).Heat(ctx, "U1")
	require.True(t, out.Computed())

	hb, err := s.GetHeatBalance(ctx, "U1")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, hb.InputHeat["stream_S1"], 1e-9)
}

func TestCalculatorHeat_UnknownUnitIsSkipped(t *testing.T) {
	s := testutil.NewStore(t)

	out := balance.NewCalculator(s).Heat(context.Background(), "ghost")

	assert.True(t, out.Skipped())
	assert.Equal(t, balance.ErrCodeUnitNotFound, balance.CodeOf(out.Err))
}
