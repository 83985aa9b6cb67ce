package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestWriteUnit_Golden(t *testing.T) {
	eff := 95.0
	r := UnitReport{
		Unit: model.ProcessUnit{ID: "U1", Name: "Feed mixer", Type: model.UnitMixer},
		Mass: &model.MaterialBalance{
			UnitID:        "U1",
			InputStreams:  []string{"S1", "S2"},
			OutputStreams: []string{"S3"},
			Status:        model.StatusBalanced,
			Tolerance:     1,
			Result: &model.MassResult{
				TotalInput:  150,
				TotalOutput: 150,
				Components: map[string]model.ComponentBalance{
					"water":   {Input: 100, Output: 100, Yield: 100},
					"ethanol": {Input: 50, Output: 50, Yield: 100},
				},
				IsBalanced: true,
			},
		},
		Heat: &model.HeatBalance{
			UnitID:     "U1",
			InputHeat:  map[string]float64{"stream_S1": 12.5, "stream_S2": 3.25},
			OutputHeat: map[string]float64{"stream_S3": 14.96, "heat_loss": 0.79},
			HeatLoss:   0.79,
			Efficiency: &eff,
			Status:     model.StatusCalculated,
		},
		Water: &model.WaterBalance{
			UnitID:        "U1",
			FreshWaterIn:  100,
			WastewaterOut: 100,
			ReuseNote:     "wastewater can be reused",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUnit(&buf, r))
	newGoldie(t).Assert(t, "unit_balance", buf.Bytes())
}

func TestWriteUnit_NotCalculated(t *testing.T) {
	r := UnitReport{Unit: model.ProcessUnit{ID: "U9", Name: "Idle tank", Type: model.UnitTank}}

	var buf bytes.Buffer
	require.NoError(t, WriteUnit(&buf, r))
	newGoldie(t).Assert(t, "unit_not_calculated", buf.Bytes())
}

func TestWritePinch_Golden(t *testing.T) {
	r := PinchReport{
		Pinch: balance.PinchResult{
			DeltaTMin:        10,
			PinchTemperature: 95,
			Pinch:            &balance.PinchPoint{HotTemperature: 100, ColdTemperature: 90, Temperature: 95},
			HotUtilityMin:    9000,
			HeatRecovery:     180000,
			TotalHotHeat:     180000,
			TotalColdHeat:    189000,
			HotCompositeCurve: []balance.CurvePoint{
				{Temperature: 150, CumulativeHeat: 180000, DeltaQ: 180000, CP: 2000},
			},
			ColdCompositeCurve: []balance.CurvePoint{
				{Temperature: 20, CumulativeHeat: 189000, DeltaQ: 189000, CP: 1800},
			},
		},
		Network: balance.Network{
			PossibleMatches: []balance.Match{
				{HotStream: "H1", ColdStream: "C1", MaxHeatExchange: 180000, TemperatureApproach: 25},
			},
		},
		Economics: &balance.Optimization{
			Current:            balance.UtilityCase{TotalCost: 226800},
			Optimal:            balance.UtilityCase{TotalCost: 7200},
			AnnualSavings:      219600,
			NumberOfExchangers: 1,
			TotalArea:          20,
			CapitalCost:        20000,
			PaybackYears:       balance.Years(20000.0 / 219600.0),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePinch(&buf, r))
	newGoldie(t).Assert(t, "pinch", buf.Bytes())
}

func TestWritePinch_Empty(t *testing.T) {
	r := PinchReport{Pinch: balance.PinchResult{DeltaTMin: 10}}

	var buf bytes.Buffer
	require.NoError(t, WritePinch(&buf, r))
	newGoldie(t).Assert(t, "pinch_empty", buf.Bytes())
}

func TestWriteWater_Golden(t *testing.T) {
	r := WaterReport{
		Account: balance.WaterAccount{
			TotalFreshWater:    10,
			TotalRecycledWater: 3,
			TotalWastewater:    7,
			TotalConsumption:   6,
			ReuseRatio:         30,
		},
		Contaminants: []balance.ContaminantAccount{
			{
				Contaminant:      model.QualityTDS,
				TotalInputLoad:   2.45,
				TotalOutputLoad:  1.2,
				TotalRemovedLoad: 0.6,
				BalanceError:     0.65,
			},
		},
		Optimization: balance.WaterOptimization{
			Current:   balance.WaterCase{TotalAnnualCost: 1051200},
			Optimized: balance.WaterCase{TotalAnnualCost: 700800},
			Opportunities: []balance.ReuseOpportunity{
				{WastewaterSource: "W3", FreshWaterReplacement: "W1", PotentialSavings: 4},
			},
			InvestmentRequired: 100000,
			PaybackPeriodYears: balance.Years(100000.0 / 350400.0),
		},
		Footprint: balance.Footprint{
			TotalWaterFootprint:  13,
			WaterIntensity:       0.013,
			WaterTypeBreakdown:   map[string]float64{"recycled_water": 3, "fresh_water": 10},
			ContaminantEmissions: map[string]float64{"TDS": 1.2},
			EfficiencyRating:     balance.RatingNeedsImprovement,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWater(&buf, r))
	newGoldie(t).Assert(t, "water_network", buf.Bytes())
}

func TestWriteYield_Golden(t *testing.T) {
	r := YieldReport{
		Efficiency: balance.Efficiency{
			TotalInput:           150,
			TotalProduct:         50,
			TotalWaste:           100,
			MaterialEfficiency:   50.0 / 150.0 * 100,
			EFactor:              2,
			OverallYield:         76,
			ComponentUtilization: map[string]float64{"water": 80},
		},
		Reactions: []model.Reaction{
			{
				ID:            "R1",
				Name:          "Ethylene hydration",
				Stoichiometry: map[string]float64{"ethylene": -1, "water": -1, "ethanol": 1},
				Conversion:    80,
				Selectivity:   map[string]float64{"ethanol": 95},
			},
			{
				ID:            "R2",
				Name:          "Ether formation",
				Stoichiometry: map[string]float64{"ethanol": -1, "ether": 0.5, "water": 0.5},
				Conversion:    10,
			},
		},
		ProcessYield: &balance.ProcessYieldResult{
			MainProduct:    "ethanol",
			TotalFeed:      200,
			TotalProduct:   76,
			OverallYield:   38,
			ReactionYields: map[string]float64{"R1": 76},
			Reactions:      1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteYield(&buf, r))
	newGoldie(t).Assert(t, "yield", buf.Bytes())
}

func TestWriteYield_NoReactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYield(&buf, YieldReport{}))

	out := buf.String()
	assert.Contains(t, out, "Utilization:\n    (none)\n")
	assert.Contains(t, out, "=== Reactions ===\n  (none)\n")
	assert.NotContains(t, out, "Process Yield")
}

func TestYears(t *testing.T) {
	assert.Equal(t, "never", years(balance.Never))
	assert.Equal(t, "2.50 years", years(balance.Years(2.5)))
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("closed pipe")
}

func TestWrite_StopsAtFirstError(t *testing.T) {
	w := &failingWriter{}
	err := WriteUnit(w, UnitReport{Unit: model.ProcessUnit{ID: "U1"}})
	assert.EqualError(t, err, "closed pipe")
	assert.Equal(t, 1, w.n)
}
