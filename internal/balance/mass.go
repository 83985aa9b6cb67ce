package balance

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// MassBalance checks component and overall conservation across a unit.
// tolerance is the relative difference, in percent, still counted as
// balanced.
func MassBalance(inputs, outputs []model.Stream, tolerance float64) *model.MassResult {
	res := &model.MassResult{Components: make(map[string]model.ComponentBalance)}
	for _, s := range inputs {
		res.TotalInput += s.FlowRate
	}
	for _, s := range outputs {
		res.TotalOutput += s.FlowRate
	}

	for _, id := range componentSet(inputs, outputs) {
		var cb model.ComponentBalance
		for _, s := range inputs {
			cb.Input += s.ComponentFlow(id)
		}
		for _, s := range outputs {
			cb.Output += s.ComponentFlow(id)
		}
		cb.Difference = cb.Output - cb.Input
		if cb.Input > 0 {
			cb.Conversion = (cb.Input - cb.Output) / cb.Input * 100
			cb.Yield = cb.Output / cb.Input * 100
		}
		res.Components[id] = cb
	}

	res.TotalDifference = res.TotalOutput - res.TotalInput
	if res.TotalInput > 0 {
		res.DifferencePercent = math.Abs(res.TotalDifference) / res.TotalInput * 100
	} else {
		res.DifferencePercent = 100
	}
	res.IsBalanced = res.DifferencePercent <= tolerance
	return res
}

// componentSet returns the sorted union of composition keys.
func componentSet(groups ...[]model.Stream) []string {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, s := range g {
			for id := range s.Composition {
				seen[id] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mass recomputes the material balance of one unit and upserts it with
// status balanced or unbalanced. The record's own tolerance is kept;
// records without one get Params.MassTolerance.
func (c *Calculator) Mass(ctx context.Context, unitID string) Outcome {
	return c.run(CalcMass, unitID, func() Outcome {
		if _, o := c.loadUnit(ctx, CalcMass, unitID); o != nil {
			return *o
		}
		streams, o := c.loadStreams(ctx, CalcMass, unitID)
		if o != nil {
			return *o
		}
		inputs, outputs := Partition(unitID, streams)
		if len(inputs) == 0 && len(outputs) == 0 {
			return skipped(CalcMass, unitID, ErrCodeNoStreams, "unit has no input or output streams")
		}

		rec, err := c.store.GetMaterialBalance(ctx, unitID)
		if errors.Is(err, model.ErrNotFound) {
			rec = model.NewMaterialBalance(unitID)
			rec.Tolerance = c.params.MassTolerance
		} else if err != nil {
			return failed(CalcMass, unitID, ErrCodeStoreRead, "read material balance", err)
		}
		if rec.Tolerance <= 0 {
			rec.Tolerance = c.params.MassTolerance
		}

		hash := inputHash(CalcMass, map[string]any{
			"inputs":    inputs,
			"outputs":   outputs,
			"tolerance": rec.Tolerance,
		})
		var res *model.MassResult
		if _, cached, ok := c.cache.lookup(CalcMass, unitID, hash); ok {
			res = cached.(*model.MassResult)
		} else {
			res = MassBalance(inputs, outputs, rec.Tolerance)
		}

		status := model.StatusUnbalanced
		if res.IsBalanced {
			status = model.StatusBalanced
		}
		rec.InputStreams = streamIDs(inputs)
		rec.OutputStreams = streamIDs(outputs)
		rec.Status = status
		rec.Result = res
		if err := c.store.UpsertMaterialBalance(ctx, rec); err != nil {
			return failed(CalcMass, unitID, ErrCodeStoreWrite, "write material balance", err)
		}
		c.cache.store(CalcMass, unitID, hash, status, res)
		return computed(CalcMass, unitID, status, res)
	})
}
