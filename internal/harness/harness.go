package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/engine"
	"github.com/virmuran/ProcessDesignPro/internal/flowsheet"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
	"github.com/virmuran/ProcessDesignPro/internal/store"
	"github.com/virmuran/ProcessDesignPro/internal/testutil"
)

// Harness holds the wiring of one scenario run.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	recorder *notify.Recorder
	logger   *zap.Logger
}

// Option configures a run.
type Option func(*options)

type options struct {
	logger *zap.Logger
	params balance.Params
}

// WithLogger sets the logger handed to the calculator and engine.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParams overrides the calculator parameters.
func WithParams(p balance.Params) Option {
	return func(o *options) { o.params = p }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database:
// 1. Import the project and recompute every unit
// 2. Drop the import's events
// 3. Apply each change through the engine
// 4. Evaluate the assertions
//
// A change that fails unexpectedly, or succeeds when expect_error is set,
// is recorded as a result error and later changes still run. Run itself
// only fails when the scenario cannot be set up.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop(), params: balance.DefaultParams()}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	st.SetClock(testutil.NewClock().Now)

	token := scenario.PassToken
	if token == "" {
		token = DefaultPassToken
	}

	rec := notify.NewRecorder()
	calc := balance.NewCalculator(st,
		balance.WithParams(o.params),
		balance.WithLogger(o.logger),
		balance.WithNotifier(rec),
	)
	h := &Harness{
		store:    st,
		recorder: rec,
		logger:   o.logger.With(zap.String("scenario", scenario.Name)),
		engine: engine.New(st, calc,
			engine.WithLogger(o.logger),
			engine.WithNotifier(rec),
			engine.WithTokenGenerator(testutil.NewFixedTokenGenerator(token)),
			engine.WithChangedBy("harness"),
		),
	}

	project, err := flowsheet.Load(scenario.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if _, err := flowsheet.Import(ctx, st, h.engine, project); err != nil {
		return nil, fmt.Errorf("failed to import project: %w", err)
	}
	rec.Reset()

	result := NewResult()
	h.applyChanges(ctx, scenario.Changes, result)
	result.AddEvents(rec.Events())

	for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, st) {
		result.AddError(msg)
	}
	return result, nil
}

// applyChanges feeds every step to the engine in order.
func (h *Harness) applyChanges(ctx context.Context, steps []ChangeStep, result *Result) {
	for i, step := range steps {
		c, err := step.Change()
		if err != nil {
			result.AddError(fmt.Sprintf("changes[%d]: %v", i, err))
			continue
		}
		report, err := h.engine.Apply(ctx, c)
		switch {
		case step.ExpectError && err == nil:
			result.AddError(fmt.Sprintf("changes[%d]: %s %s %s succeeded, expected an error", i, c.Source, c.Op, c.ID))
		case !step.ExpectError && err != nil:
			result.AddError(fmt.Sprintf("changes[%d]: %s %s %s: %v", i, c.Source, c.Op, c.ID, err))
		}
		h.logger.Debug("change applied",
			zap.Int("step", i),
			zap.String("source", string(c.Source)),
			zap.String("operation", string(c.Op)),
			zap.String("entity_id", report.Change.ID),
			zap.Int("calculations", len(report.Outcomes)),
			zap.Error(err),
		)
	}
}
