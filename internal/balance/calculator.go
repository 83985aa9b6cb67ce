package balance

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
)

// Calculator runs the per-unit mass, heat and water balances against a
// Store. Every run returns an Outcome; no run panics or returns an error to
// the caller. Computed runs persist their record and emit a
// calculation_completed event.
type Calculator struct {
	store    Store
	params   Params
	logger   *zap.Logger
	notifier notify.Notifier
	cache    *Cache
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithParams overrides the calculator constants.
func WithParams(p Params) Option {
	return func(c *Calculator) {
		c.params = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNotifier sets the receiver of calculation_completed events.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Calculator) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithCache enables the input-hash result cache.
func WithCache(cache *Cache) Option {
	return func(c *Calculator) {
		c.cache = cache
	}
}

// NewCalculator returns a Calculator reading and writing through s.
func NewCalculator(s Store, opts ...Option) *Calculator {
	c := &Calculator{
		store:    s,
		params:   DefaultParams(),
		logger:   zap.NewNop(),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params returns the constants in use.
func (c *Calculator) Params() Params {
	return c.params
}

// Cache returns the result cache, or nil when caching is off.
func (c *Calculator) Cache() *Cache {
	return c.cache
}

// Run dispatches to the calculator named by calc.
func (c *Calculator) Run(ctx context.Context, calc CalcType, unitID string) Outcome {
	switch calc {
	case CalcMass:
		return c.Mass(ctx, unitID)
	case CalcHeat:
		return c.Heat(ctx, unitID)
	case CalcWater:
		return c.Water(ctx, unitID)
	}
	out := failed(calc, unitID, ErrCodeInternal, "unknown calculator", nil)
	c.finish(out)
	return out
}

// run executes fn, converting a panic into a failed outcome, then logs and
// notifies.
func (c *Calculator) run(calc CalcType, unitID string, fn func() Outcome) Outcome {
	out := guard(calc, unitID, fn)
	c.finish(out)
	return out
}

func guard(calc CalcType, unitID string, fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(calc, unitID, ErrCodeInternal, "calculation panicked", fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

func (c *Calculator) finish(out Outcome) {
	fields := []zap.Field{
		zap.String("calc", string(out.Calc)),
		zap.String("unit_id", out.UnitID),
	}
	switch out.Kind {
	case Computed:
		c.logger.Debug("calculation completed", append(fields, zap.String("status", string(out.Status)))...)
		c.notifier.Notify(notify.CalculationCompleted{
			CalcType: string(out.Calc),
			UnitID:   out.UnitID,
			Status:   string(out.Status),
			Results:  out.Result,
		})
	case Skipped:
		c.logger.Debug("calculation skipped", append(fields, zap.Error(out.Err))...)
	case Failed:
		c.logger.Error("calculation failed", append(fields, zap.Error(out.Err))...)
	}
}

// loadUnit resolves the target unit, mapping a missing unit to a skip.
func (c *Calculator) loadUnit(ctx context.Context, calc CalcType, unitID string) (model.ProcessUnit, *Outcome) {
	u, err := c.store.GetUnit(ctx, unitID)
	if errors.Is(err, model.ErrNotFound) {
		o := skipped(calc, unitID, ErrCodeUnitNotFound, "unit does not exist")
		return model.ProcessUnit{}, &o
	}
	if err != nil {
		o := failed(calc, unitID, ErrCodeStoreRead, "read unit", err)
		return model.ProcessUnit{}, &o
	}
	return u, nil
}

func (c *Calculator) loadStreams(ctx context.Context, calc CalcType, unitID string) ([]model.Stream, *Outcome) {
	streams, err := c.store.StreamsForUnit(ctx, unitID)
	if err != nil {
		o := failed(calc, unitID, ErrCodeStoreRead, "read streams", err)
		return nil, &o
	}
	return streams, nil
}

// Partition splits a unit's streams into inputs (destination is the unit)
// and outputs (source is the unit). A stream looping back onto the unit
// counts as an input only.
func Partition(unitID string, streams []model.Stream) (inputs, outputs []model.Stream) {
	for _, s := range streams {
		switch unitID {
		case s.DestinationUnit:
			inputs = append(inputs, s)
		case s.SourceUnit:
			outputs = append(outputs, s)
		}
	}
	return inputs, outputs
}

func streamIDs(streams []model.Stream) []string {
	ids := make([]string, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.ID)
	}
	return ids
}
