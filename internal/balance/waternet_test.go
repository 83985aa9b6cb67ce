package balance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
)

func waterNetwork() ([]model.WaterStream, []model.TreatmentUnit) {
	streams := []model.WaterStream{
		{ID: "F1", Source: model.WaterFresh, FlowRate: 100, Quality: map[string]float64{"TDS": 100, "COD": 10}},
		{ID: "F2", Source: model.WaterFresh, FlowRate: 20},
		{ID: "R1", Source: model.WaterRecycled, FlowRate: 30, Quality: map[string]float64{"TDS": 200}},
		{ID: "P1", Source: model.WaterProcess, FlowRate: 40},
		{ID: "W1", Source: model.Wastewater, FlowRate: 50, Quality: map[string]float64{"TDS": 400, "COD": 80, "BOD": 20, "TSS": 30}},
		{ID: "W2", Source: model.Wastewater, FlowRate: 60, Quality: map[string]float64{"TDS": 900}},
	}
	units := []model.TreatmentUnit{
		{ID: "T1", InletStreams: []string{"W2", "missing"}, RemovalEfficiencies: map[string]float64{"TDS": 50}},
	}
	return streams, units
}

func TestOverallWaterBalance(t *testing.T) {
	streams, _ := waterNetwork()

	a := balance.OverallWaterBalance(streams)

	assert.Equal(t, 120.0, a.TotalFreshWater)
	assert.Equal(t, 30.0, a.TotalRecycledWater)
	assert.Equal(t, 40.0, a.TotalConsumption)
	assert.Equal(t, 260.0, a.TotalWastewater)
	assert.Equal(t, 25.0, a.ReuseRatio)
	assert.Equal(t, 3.0, a.SpecificWaterConsumption)
	assert.Equal(t, 150.0, a.BalanceError)
}

func TestOverallWaterBalance_Empty(t *testing.T) {
	a := balance.OverallWaterBalance(nil)
	assert.Equal(t, balance.WaterAccount{}, a)
}

func TestContaminantBalance(t *testing.T) {
	streams, units := waterNetwork()

	c := balance.ContaminantBalance(streams, units, "TDS")

	assert.InDelta(t, 16.0, c.TotalInputLoad, 1e-9)
	assert.InDelta(t, 74.0, c.TotalOutputLoad, 1e-9)
	assert.InDelta(t, 27.0, c.TotalRemovedLoad, 1e-9)
	assert.InDelta(t, -85.0, c.BalanceError, 1e-9)
	assert.False(t, c.IsBalanced)
	assert.InDelta(t, 168.75, c.OverallRemoval, 1e-9)
}

func TestContaminantBalance_Balanced(t *testing.T) {
	streams := []model.WaterStream{
		{ID: "F", Source: model.WaterFresh, FlowRate: 10, Quality: map[string]float64{"TDS": 100}},
		{ID: "W", Source: model.Wastewater, FlowRate: 10, Quality: map[string]float64{"TDS": 50}},
	}
	units := []model.TreatmentUnit{
		{ID: "T", InletStreams: []string{"F"}, RemovalEfficiencies: map[string]float64{"TDS": 50}},
	}

	c := balance.ContaminantBalance(streams, units, "TDS")

	assert.True(t, c.IsBalanced)
	assert.InDelta(t, 0.0, c.BalanceError, 1e-12)
	assert.InDelta(t, 50.0, c.OverallRemoval, 1e-9)
}

func TestReuseOpportunities(t *testing.T) {
	streams, _ := waterNetwork()

	ops := balance.ReuseOpportunities(streams, balance.DefaultReuseLimits())

	require.Len(t, ops, 2)
	assert.Equal(t, "W1", ops[0].WastewaterSource)
	assert.Equal(t, "F1", ops[0].FreshWaterReplacement)
	assert.Equal(t, 50.0, ops[0].PotentialSavings)
	assert.Equal(t, "F2", ops[1].FreshWaterReplacement)
	assert.Equal(t, 20.0, ops[1].PotentialSavings)

	q := ops[0].QualityAnalysis
	require.Len(t, q, 4)
	assert.Equal(t, balance.QualityCheck{Wastewater: 400, Required: 500, MeetsRequirement: true}, q["TDS"])
	assert.Equal(t, balance.QualityCheck{Wastewater: 20, Required: 30, MeetsRequirement: true}, q["BOD"])
}

func TestReuseOpportunities_MissingParameterCountsAsZero(t *testing.T) {
	streams := []model.WaterStream{
		{ID: "W", Source: model.Wastewater, FlowRate: 5},
		{ID: "F", Source: model.WaterFresh, FlowRate: 8},
	}

	ops := balance.ReuseOpportunities(streams, map[string]float64{"COD": 0})

	require.Len(t, ops, 1)
	assert.Equal(t, 5.0, ops[0].PotentialSavings)
}

func TestReusePotential(t *testing.T) {
	streams, _ := waterNetwork()
	ops := balance.ReuseOpportunities(streams, balance.DefaultReuseLimits())

	s, ok := balance.ReusePotential(streams, ops, 5)

	require.True(t, ok)
	assert.Equal(t, 70.0, s.TotalReusePotential)
	assert.Equal(t, 70.0, s.FreshWaterSavings)
	assert.Equal(t, 70.0, s.WastewaterReduction)
	assert.InDelta(t, 70.0/120.0*100, s.PotentialReductionPercent, 1e-9)
	assert.Equal(t, 2, s.NumberOfOpportunities)
	assert.Equal(t, 70.0*24*365*5, s.EstimatedCostSavings)
}

func TestReusePotential_NoOpportunities(t *testing.T) {
	s, ok := balance.ReusePotential(nil, nil, 5)
	assert.False(t, ok)
	assert.Equal(t, balance.ReuseSummary{}, s)
}

func TestOptimizeWaterNetwork(t *testing.T) {
	streams, _ := waterNetwork()

	o := balance.OptimizeWaterNetwork(streams, balance.DefaultWaterParams())

	assert.Equal(t, 120.0, o.Current.FreshWaterConsumption)
	assert.Equal(t, 260.0, o.Current.WastewaterGeneration)
	assert.Equal(t, 50.0, o.Optimized.FreshWaterConsumption)
	assert.Equal(t, 190.0, o.Optimized.WastewaterGeneration)
	assert.InDelta(t, (120*5+260*10)*8760.0, o.Current.TotalAnnualCost, 1e-6)
	assert.InDelta(t, 1050*8760.0, o.AnnualCostSavings, 1e-6)
	assert.Equal(t, 200000.0, o.InvestmentRequired)
	assert.InDelta(t, 200000/(1050*8760.0), float64(o.PaybackPeriodYears), 1e-12)
	assert.Len(t, o.Opportunities, 2)
}

func TestOptimizeWaterNetwork_NothingToReuse(t *testing.T) {
	streams := []model.WaterStream{{ID: "F", Source: model.WaterFresh, FlowRate: 10}}

	o := balance.OptimizeWaterNetwork(streams, balance.DefaultWaterParams())

	assert.Equal(t, 0.0, o.AnnualCostSavings)
	assert.True(t, o.PaybackPeriodYears.IsNever())
	assert.Equal(t, o.Current, o.Optimized)
}

func TestEfficiencyRating(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{100, balance.RatingExcellent},
		{80, balance.RatingExcellent},
		{79.9, balance.RatingGood},
		{60, balance.RatingGood},
		{40, balance.RatingFair},
		{20, balance.RatingNeedsImprovement},
		{19.99, balance.RatingPoor},
		{0, balance.RatingPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, balance.EfficiencyRating(tt.ratio), "ratio %g", tt.ratio)
	}
}

func TestWaterFootprint(t *testing.T) {
	streams, units := waterNetwork()

	f := balance.WaterFootprint(streams, units)

	assert.Equal(t, 150.0, f.TotalWaterFootprint)
	assert.Equal(t, 0.15, f.WaterIntensity)
	assert.Equal(t, map[string]float64{
		"fresh_water":    120,
		"recycled_water": 30,
		"process_water":  40,
		"wastewater":     110,
	}, f.WaterTypeBreakdown)
	assert.InDelta(t, 74.0, f.ContaminantEmissions["TDS"], 1e-9)
	assert.InDelta(t, 4.0, f.ContaminantEmissions["COD"], 1e-9)
	assert.InDelta(t, 1.0, f.ContaminantEmissions["BOD"], 1e-9)
	assert.InDelta(t, 1.5, f.ContaminantEmissions["TSS"], 1e-9)
	assert.NotContains(t, f.ContaminantEmissions, "chloride")
	assert.Equal(t, balance.RatingNeedsImprovement, f.EfficiencyRating)
}
