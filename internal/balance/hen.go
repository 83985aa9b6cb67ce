package balance

import (
	"fmt"
	"math"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// Match is a feasible hot/cold pairing.
type Match struct {
	HotStream           string  `json:"hot_stream"`
	ColdStream          string  `json:"cold_stream"`
	MaxHeatExchange     float64 `json:"max_heat_exchange"`
	TemperatureApproach float64 `json:"temperature_approach"`
}

// Network summarizes the heat exchanger network targets and the candidate
// matches.
type Network struct {
	HotStreams       []string `json:"hot_streams"`
	ColdStreams      []string `json:"cold_streams"`
	TotalHotStreams  int      `json:"total_hot_streams"`
	TotalColdStreams int      `json:"total_cold_streams"`
	PinchTemperature float64  `json:"pinch_temperature"`
	MinHotUtility    float64  `json:"min_hot_utility"`
	MinColdUtility   float64  `json:"min_cold_utility"`
	PossibleMatches  []Match  `json:"possible_matches"`
}

// MatchNetwork runs the pinch analysis and lists every hot/cold pair whose
// outlet and inlet ends both clear deltaTMin. The match heat is the
// smaller of the two duties.
func MatchNetwork(streams []model.HeatStream, deltaTMin float64) Network {
	hot, cold := SplitStreams(streams)
	pinch := PinchAnalysis(streams, deltaTMin)

	n := Network{
		HotStreams:       heatStreamIDs(hot),
		ColdStreams:      heatStreamIDs(cold),
		TotalHotStreams:  len(hot),
		TotalColdStreams: len(cold),
		PinchTemperature: pinch.PinchTemperature,
		MinHotUtility:    pinch.HotUtilityMin,
		MinColdUtility:   pinch.ColdUtilityMin,
		PossibleMatches:  []Match{},
	}
	for _, h := range hot {
		for _, c := range cold {
			if h.TemperatureOut <= c.TemperatureIn+deltaTMin || h.TemperatureIn <= c.TemperatureOut+deltaTMin {
				continue
			}
			q := math.Min(math.Abs(h.Duty()), math.Abs(c.Duty()))
			if q <= 0 {
				continue
			}
			n.PossibleMatches = append(n.PossibleMatches, Match{
				HotStream:           h.ID,
				ColdStream:          c.ID,
				MaxHeatExchange:     q,
				TemperatureApproach: math.Min(h.TemperatureOut-c.TemperatureIn, h.TemperatureIn-c.TemperatureOut),
			})
		}
	}
	return n
}

func heatStreamIDs(streams []model.HeatStream) []string {
	ids := make([]string, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.ID)
	}
	return ids
}

// Rating is the thermal rating of one exchanger.
type Rating struct {
	ExchangerID         string  `json:"exchanger_id"`
	Name                string  `json:"name"`
	HeatDuty            float64 `json:"heat_duty"` // kJ/h, hot side
	LMTD                float64 `json:"lmtd"`
	UClean              float64 `json:"u_clean"`
	UDirty              float64 `json:"u_dirty"`
	RequiredArea        float64 `json:"required_area"`
	ActualArea          float64 `json:"actual_area"`
	AreaEfficiency      float64 `json:"area_efficiency"`
	TemperatureApproach float64 `json:"temperature_approach"`

	// Feasible is false on a temperature cross; LMTD and the area figures
	// are then zero.
	Feasible bool `json:"feasible"`
}

// Rate computes LMTD, fouled U and required area of an exchanger given its
// hot and cold streams.
func Rate(x model.HeatExchanger, hot, cold model.HeatStream) Rating {
	dt1 := hot.TemperatureIn - cold.TemperatureOut
	dt2 := hot.TemperatureOut - cold.TemperatureIn
	r := Rating{
		ExchangerID:         x.ID,
		Name:                x.Name,
		HeatDuty:            hot.Duty(),
		UClean:              x.UValue,
		UDirty:              1 / (1/x.UValue + x.Fouling()),
		ActualArea:          x.Area,
		TemperatureApproach: math.Min(dt1, dt2),
	}
	if dt1 <= 0 || dt2 <= 0 {
		return r
	}
	r.Feasible = true
	if math.Abs(dt1-dt2) < 1e-6 {
		r.LMTD = dt1
	} else {
		r.LMTD = (dt1 - dt2) / math.Log(dt1/dt2)
	}
	r.RequiredArea = math.Abs(r.HeatDuty) * 1000 / (r.UDirty * r.LMTD * 3600)
	if r.RequiredArea > 0 {
		r.AreaEfficiency = x.Area / r.RequiredArea * 100
	}
	return r
}

// RateAll rates every exchanger, resolving its streams by id.
func RateAll(streams []model.HeatStream, exchangers []model.HeatExchanger) ([]Rating, error) {
	byID := make(map[string]model.HeatStream, len(streams))
	for _, s := range streams {
		byID[s.ID] = s
	}
	ratings := make([]Rating, 0, len(exchangers))
	for _, x := range exchangers {
		hot, ok := byID[x.HotStream]
		if !ok {
			return nil, fmt.Errorf("exchanger %q: hot stream %q: %w", x.ID, x.HotStream, model.ErrNotFound)
		}
		cold, ok := byID[x.ColdStream]
		if !ok {
			return nil, fmt.Errorf("exchanger %q: cold stream %q: %w", x.ID, x.ColdStream, model.ErrNotFound)
		}
		ratings = append(ratings, Rate(x, hot, cold))
	}
	return ratings, nil
}

// OverallHeat is the network-level heat account. Streams absorbing heat
// count as input, streams releasing heat as output.
type OverallHeat struct {
	TotalInput          float64 `json:"total_heat_input"`
	TotalOutput         float64 `json:"total_heat_output"`
	Generated           float64 `json:"heat_generated"`
	Consumed            float64 `json:"heat_consumed"`
	Loss                float64 `json:"heat_loss"`
	BalanceErrorPercent float64 `json:"balance_error_percent"`
	IsBalanced          bool    `json:"is_balanced"`
	ThermalEfficiency   float64 `json:"thermal_efficiency"`
}

// OverallHeatBalance accounts the duties of a stream set. Balanced means
// an error under 1 %.
func OverallHeatBalance(streams []model.HeatStream) OverallHeat {
	var o OverallHeat
	for _, s := range streams {
		q := s.Duty()
		if q > 0 {
			o.TotalInput += q
			o.Consumed += q
		} else {
			o.TotalOutput += -q
			o.Generated += -q
		}
	}
	o.Loss = o.TotalInput + o.Generated - o.TotalOutput - o.Consumed
	if total := o.TotalInput + o.Generated; total > 0 {
		o.BalanceErrorPercent = math.Abs(o.Loss) / total * 100
	}
	o.IsBalanced = o.BalanceErrorPercent < 1
	if o.TotalInput > 0 {
		o.ThermalEfficiency = o.TotalOutput / o.TotalInput * 100
	}
	return o
}

// EnergyReport combines the overall account with per-exchanger ratings.
type EnergyReport struct {
	OverallThermalEfficiency float64  `json:"overall_thermal_efficiency"`
	HeatRecoveryRate         float64  `json:"heat_recovery_rate"`
	TotalHeatExchanged       float64  `json:"total_heat_exchanged"`
	EnergyIntensity          float64  `json:"energy_intensity"`
	Exchangers               []Rating `json:"unit_efficiencies"`
}

// EnergyEfficiency rates the exchangers and relates the heat they move to
// the network's heat input.
func EnergyEfficiency(streams []model.HeatStream, exchangers []model.HeatExchanger) (EnergyReport, error) {
	ratings, err := RateAll(streams, exchangers)
	if err != nil {
		return EnergyReport{}, err
	}
	overall := OverallHeatBalance(streams)

	r := EnergyReport{
		OverallThermalEfficiency: overall.ThermalEfficiency,
		Exchangers:               ratings,
	}
	for _, rt := range ratings {
		r.TotalHeatExchanged += math.Abs(rt.HeatDuty)
	}
	if overall.TotalInput > 0 {
		r.HeatRecoveryRate = r.TotalHeatExchanged / overall.TotalInput * 100
	}
	if r.TotalHeatExchanged > 0 {
		r.EnergyIntensity = overall.TotalInput / r.TotalHeatExchanged
	}
	return r, nil
}
