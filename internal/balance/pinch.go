package balance

import (
	"math"
	"sort"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// CurvePoint is one interval of a composite curve. Temperature is the
// interval's leading breakpoint.
type CurvePoint struct {
	Temperature    float64 `json:"temperature"`
	CumulativeHeat float64 `json:"cumulative_heat"`
	DeltaQ         float64 `json:"delta_q"`
	CP             float64 `json:"cp"`
}

// CompositeCurve builds the cumulative heat step curve of a stream set.
// Breakpoints run from hot to cold when hot is true, cold to hot otherwise.
// Each interval accumulates the CP of every stream spanning it.
func CompositeCurve(streams []model.HeatStream, hot bool) []CurvePoint {
	seen := make(map[float64]struct{})
	for _, s := range streams {
		seen[s.TemperatureIn] = struct{}{}
		seen[s.TemperatureOut] = struct{}{}
	}
	temps := make([]float64, 0, len(seen))
	for t := range seen {
		temps = append(temps, t)
	}
	if hot {
		sort.Sort(sort.Reverse(sort.Float64Slice(temps)))
	} else {
		sort.Float64s(temps)
	}

	curve := []CurvePoint{}
	var cumulative float64
	for i := 0; i+1 < len(temps); i++ {
		t1, t2 := temps[i], temps[i+1]
		lo, hi := math.Min(t1, t2), math.Max(t1, t2)

		var cp float64
		for _, s := range streams {
			sLo, sHi := s.Span()
			if sLo <= lo && sHi >= hi {
				cp += s.CP()
			}
		}
		dq := cp * (hi - lo)
		cumulative += dq
		curve = append(curve, CurvePoint{
			Temperature:    t1,
			CumulativeHeat: cumulative,
			DeltaQ:         dq,
			CP:             cp,
		})
	}
	return curve
}

// PinchPoint is the closest approach of the hot and the shifted cold curve.
type PinchPoint struct {
	HotTemperature  float64 `json:"hot_temperature"`
	ColdTemperature float64 `json:"cold_temperature"`
	Temperature     float64 `json:"temperature"`
	HeatFlow        float64 `json:"heat_flow"`
}

// PinchResult is the outcome of a pinch analysis. Heat values are in kJ/h.
type PinchResult struct {
	DeltaTMin          float64      `json:"delta_t_min"`
	PinchTemperature   float64      `json:"pinch_temperature"`
	Pinch              *PinchPoint  `json:"pinch,omitempty"`
	HotUtilityMin      float64      `json:"hot_utility_min"`
	ColdUtilityMin     float64      `json:"cold_utility_min"`
	HeatRecovery       float64      `json:"heat_recovery_potential"`
	TotalHotHeat       float64      `json:"total_hot_heat"`
	TotalColdHeat      float64      `json:"total_cold_heat"`
	HotCompositeCurve  []CurvePoint `json:"hot_composite_curve"`
	ColdCompositeCurve []CurvePoint `json:"cold_composite_curve"`
}

// SplitStreams partitions heat streams into hot and cold, keeping order.
// Isothermal streams belong to neither.
func SplitStreams(streams []model.HeatStream) (hot, cold []model.HeatStream) {
	for _, s := range streams {
		switch {
		case s.IsHot():
			hot = append(hot, s)
		case s.IsCold():
			cold = append(cold, s)
		}
	}
	return hot, cold
}

// PinchAnalysis locates the pinch and the minimum utilities of a stream
// set. Recovery is bounded by min(total hot, total cold); this is a
// simplification of the problem table algorithm and can misjudge
// multi-stream networks.
func PinchAnalysis(streams []model.HeatStream, deltaTMin float64) PinchResult {
	hot, cold := SplitStreams(streams)
	hotCurve := CompositeCurve(hot, true)
	coldCurve := CompositeCurve(cold, false)

	res := PinchResult{
		DeltaTMin:          deltaTMin,
		HotCompositeCurve:  hotCurve,
		ColdCompositeCurve: coldCurve,
	}
	if p, ok := findPinch(hotCurve, coldCurve, deltaTMin); ok {
		res.Pinch = &p
		res.PinchTemperature = p.Temperature
	}

	res.TotalHotHeat = lastCumulative(hotCurve)
	res.TotalColdHeat = lastCumulative(coldCurve)
	res.HeatRecovery = math.Min(res.TotalHotHeat, res.TotalColdHeat)
	res.HotUtilityMin = math.Max(0, res.TotalColdHeat-res.HeatRecovery)
	res.ColdUtilityMin = math.Max(0, res.TotalHotHeat-res.HeatRecovery)
	return res
}

// findPinch scans every hot/cold breakpoint pair with the cold curve
// shifted up by deltaTMin. Ties keep the first pair found.
func findPinch(hot, cold []CurvePoint, deltaTMin float64) (PinchPoint, bool) {
	var (
		best    PinchPoint
		found   bool
		closest = math.Inf(1)
	)
	for _, h := range hot {
		for _, c := range cold {
			d := math.Abs(h.Temperature - (c.Temperature + deltaTMin))
			if d < closest {
				closest = d
				found = true
				best = PinchPoint{
					HotTemperature:  h.Temperature,
					ColdTemperature: c.Temperature,
					Temperature:     h.Temperature,
					HeatFlow:        h.CumulativeHeat,
				}
			}
		}
	}
	return best, found
}

func lastCumulative(curve []CurvePoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	return curve[len(curve)-1].CumulativeHeat
}
