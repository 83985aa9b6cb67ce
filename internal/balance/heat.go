package balance

import (
	"context"
	"math"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// Heat contribution labels.
const (
	HeatKeyReaction = "reaction"
	HeatKeyLoss     = "heat_loss"
)

// StreamHeatKey labels a stream's sensible heat contribution.
func StreamHeatKey(streamID string) string {
	return "stream_" + streamID
}

// StreamHeat returns the sensible heat of a stream in kW relative to ref °C.
// Components whose material is unknown or has no specific heat contribute 0.
func StreamHeat(s model.Stream, materials map[string]model.Material, ref float64) float64 {
	if !s.HasThermalState() {
		return 0
	}
	var q float64
	for id, frac := range s.Composition {
		m, ok := materials[id]
		if !ok || !m.HasSpecificHeat() {
			continue
		}
		kgPerSecond := s.FlowRate * frac / 3600
		q += kgPerSecond * m.Enthalpy(*s.Temperature, ref)
	}
	return q
}

// UnitHeat builds the heat balance of a unit from its streams, the reaction
// heat parameter and the fixed loss fraction. The record is "calculated"
// when output and input differ by less than Params.HeatAbsTolerance kW,
// otherwise "unbalanced".
func UnitHeat(unit model.ProcessUnit, streams []model.Stream, materials map[string]model.Material, p Params) model.HeatBalance {
	in := make(map[string]float64)
	out := make(map[string]float64)

	inputs, outputs := Partition(unit.ID, streams)
	for _, s := range inputs {
		if s.HasThermalState() {
			in[StreamHeatKey(s.ID)] = StreamHeat(s, materials, p.ReferenceTemperature)
		}
	}
	for _, s := range outputs {
		if s.HasThermalState() {
			out[StreamHeatKey(s.ID)] = StreamHeat(s, materials, p.ReferenceTemperature)
		}
	}
	if rh := unit.ReactionHeat(); rh != 0 {
		in[HeatKeyReaction] = rh
	}

	totalIn := sumValues(in)
	loss := totalIn * p.HeatLossFraction
	out[HeatKeyLoss] = loss
	totalOut := sumValues(out)

	var efficiency *float64
	if totalIn > 0 {
		efficiency = model.Float((totalOut - loss) / totalIn * 100)
	}

	balanced := math.Abs(totalOut-totalIn) < p.HeatAbsTolerance
	status := model.StatusUnbalanced
	if balanced {
		status = model.StatusCalculated
	}

	return model.HeatBalance{
		UnitID:              unit.ID,
		InputHeat:           in,
		OutputHeat:          out,
		HeatLoss:            loss,
		Efficiency:          efficiency,
		UtilityRequirements: map[string]float64{},
		Status:              status,
		Result: &model.HeatResult{
			TotalInput:  totalIn,
			TotalOutput: totalOut,
			Difference:  totalOut - totalIn,
			Efficiency:  efficiency,
			IsBalanced:  balanced,
		},
	}
}

func sumValues(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// Heat recomputes the heat balance of one unit. A unit without streams is
// balanced only when it declares reaction heat; otherwise the run is
// skipped and no record is touched.
func (c *Calculator) Heat(ctx context.Context, unitID string) Outcome {
	return c.run(CalcHeat, unitID, func() Outcome {
		unit, o := c.loadUnit(ctx, CalcHeat, unitID)
		if o != nil {
			return *o
		}
		streams, o := c.loadStreams(ctx, CalcHeat, unitID)
		if o != nil {
			return *o
		}
		if len(streams) == 0 && unit.ReactionHeat() == 0 {
			return skipped(CalcHeat, unitID, ErrCodeNoStreams, "unit has no streams and no reaction heat")
		}
		list, err := c.store.ListMaterials(ctx)
		if err != nil {
			return failed(CalcHeat, unitID, ErrCodeStoreRead, "read materials", err)
		}
		materials := make(map[string]model.Material, len(list))
		for _, m := range list {
			materials[m.ID] = m
		}

		hash := inputHash(CalcHeat, map[string]any{
			"unit":      unit,
			"streams":   streams,
			"materials": relevantMaterials(streams, materials),
			"params":    c.params,
		})
		var rec model.HeatBalance
		if _, cached, ok := c.cache.lookup(CalcHeat, unitID, hash); ok {
			rec = cached.(model.HeatBalance)
		} else {
			rec = UnitHeat(unit, streams, materials, c.params)
		}

		if err := c.store.UpsertHeatBalance(ctx, rec); err != nil {
			return failed(CalcHeat, unitID, ErrCodeStoreWrite, "write heat balance", err)
		}
		c.cache.store(CalcHeat, unitID, hash, rec.Status, rec)
		return computed(CalcHeat, unitID, rec.Status, rec.Result)
	})
}

// relevantMaterials narrows the material set to those the streams mention,
// so unrelated material edits do not invalidate a unit's cached result.
func relevantMaterials(streams []model.Stream, materials map[string]model.Material) map[string]model.Material {
	out := make(map[string]model.Material)
	for _, id := range componentSet(streams) {
		if m, ok := materials[id]; ok {
			out[id] = m
		}
	}
	return out
}
