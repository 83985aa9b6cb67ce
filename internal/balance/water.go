package balance

import (
	"context"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// ReuseNotePending is the reuse note written until a network-level reuse
// analysis has been run.
const ReuseNotePending = "pending analysis"

// UnitWater accounts the water carried by a unit's water-bearing streams.
// All incoming water is booked as fresh; consumption never goes negative.
func UnitWater(unitID string, streams []model.Stream) model.WaterBalance {
	var waterIn, waterOut float64
	inputs, outputs := Partition(unitID, streams)
	for _, s := range inputs {
		if s.IsWaterBearing() {
			waterIn += s.FlowRate * s.WaterContent()
		}
	}
	for _, s := range outputs {
		if s.IsWaterBearing() {
			waterOut += s.FlowRate * s.WaterContent()
		}
	}

	consumption := waterIn - waterOut
	if consumption < 0 {
		consumption = 0
	}
	return model.WaterBalance{
		UnitID:           unitID,
		FreshWaterIn:     waterIn,
		RecycledWaterIn:  0,
		WaterConsumption: consumption,
		WastewaterOut:    waterOut,
		ReuseNote:        ReuseNotePending,
	}
}

// Water recomputes the water balance of one unit.
func (c *Calculator) Water(ctx context.Context, unitID string) Outcome {
	return c.run(CalcWater, unitID, func() Outcome {
		if _, o := c.loadUnit(ctx, CalcWater, unitID); o != nil {
			return *o
		}
		streams, o := c.loadStreams(ctx, CalcWater, unitID)
		if o != nil {
			return *o
		}
		if len(streams) == 0 {
			return skipped(CalcWater, unitID, ErrCodeNoStreams, "unit has no input or output streams")
		}

		hash := inputHash(CalcWater, streams)
		var rec model.WaterBalance
		if _, cached, ok := c.cache.lookup(CalcWater, unitID, hash); ok {
			rec = cached.(model.WaterBalance)
		} else {
			rec = UnitWater(unitID, streams)
		}

		if err := c.store.UpsertWaterBalance(ctx, rec); err != nil {
			return failed(CalcWater, unitID, ErrCodeStoreWrite, "write water balance", err)
		}
		c.cache.store(CalcWater, unitID, hash, model.StatusCalculated, rec)
		return computed(CalcWater, unitID, model.StatusCalculated, rec)
	})
}
