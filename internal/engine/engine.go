package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// Calculator runs one balance calculation for one unit.
// *balance.Calculator implements it.
type Calculator interface {
	Run(ctx context.Context, calc balance.CalcType, unitID string) balance.Outcome
}

// CalculateAllDescription is the sync_completed description of a
// full-project recompute.
const CalculateAllDescription = "calculate_all"

// Engine propagates entity changes to the dependent balances.
//
// INVARIANTS:
//   - the registry never changes after construction
//   - targets of a rule run in the rule's order
//   - each (calculator, unit) pair runs at most once per pass
type Engine struct {
	store     Store
	calc      Calculator
	registry  *Registry
	tokens    TokenGenerator
	processed *ProcessedSet
	logger    *zap.Logger
	notifier  notify.Notifier
	changedBy string

	maxCalculations int

	// passes numbers passes so reports order without wall-clock time.
	passes atomic.Int64
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithRegistry replaces the default rule table.
func WithRegistry(r *Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithTokenGenerator sets the pass token source. The default is UUIDv7.
func WithTokenGenerator(g TokenGenerator) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.tokens = g
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier sets the receiver of data_updated and sync_completed events.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithChangedBy sets the author recorded for changes that name none.
func WithChangedBy(who string) EngineOption {
	return func(e *Engine) {
		e.changedBy = who
	}
}

// WithMaxCalculations sets the calculation budget of one pass.
//
// Default: 10000 (DefaultMaxCalculations)
func WithMaxCalculations(n int) EngineOption {
	return func(e *Engine) {
		e.maxCalculations = n
	}
}

// New creates an Engine writing through s and calculating through calc.
func New(s Store, calc Calculator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:           s,
		calc:            calc,
		registry:        DefaultRegistry(),
		tokens:          UUIDv7Generator{},
		processed:       NewProcessedSet(),
		logger:          zap.NewNop(),
		notifier:        notify.Nop{},
		changedBy:       store.DefaultChangedBy,
		maxCalculations: DefaultMaxCalculations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the rule table in use.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Passes returns how many passes the engine has started.
func (e *Engine) Passes() int64 {
	return e.passes.Load()
}

// TargetResult is the result of one handler in a pass.
type TargetResult struct {
	Target  Target
	Handled bool
	Err     error
}

// Report summarizes a propagation pass.
type Report struct {
	PassToken  string
	Seq        int64
	Change     Change
	Dispatched bool
	Version    int64
	Targets    []TargetResult
	Outcomes   []balance.Outcome
}

// Err joins the failures of every target, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, t := range r.Targets {
		if t.Err != nil {
			errs = append(errs, t.Err)
		}
	}
	return errors.Join(errs...)
}

// Ran returns the units calc computed during the pass, in run order.
// Skipped and failed runs are left out.
func (r Report) Ran(calc balance.CalcType) []string {
	var units []string
	for _, o := range r.Outcomes {
		if o.Calc == calc && o.Computed() {
			units = append(units, o.UnitID)
		}
	}
	return units
}

// Count returns how many outcomes of calc have the given kind.
func (r Report) Count(calc balance.CalcType, kind balance.OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Calc == calc && o.Kind == kind {
			n++
		}
	}
	return n
}

// Sync propagates a change that has already been persisted.
//
// Unknown source kinds and operations that are not triggers of the rule
// are no-ops and return a report with Dispatched false. Otherwise the
// change is recorded in the change log and every target with a handler
// runs. Handler failures do not stop later targets; they are collected,
// reported through sync_completed, and returned joined.
func (e *Engine) Sync(ctx context.Context, c Change) (Report, error) {
	report := Report{Change: c}
	rule, ok := e.registry.Lookup(c.Source)
	if !ok || !rule.Triggered(c.Op) {
		e.logger.Debug("no propagation rule",
			zap.String("source", string(c.Source)),
			zap.String("operation", string(c.Op)),
			zap.String("entity_id", c.ID),
		)
		return report, nil
	}
	if c.ID == "" {
		c.ID = c.entityID()
		report.Change.ID = c.ID
	}

	p := e.beginPass()
	defer e.endPass(p)
	report.PassToken = p.Token
	report.Seq = p.Seq
	report.Dispatched = true

	log := e.logger.With(
		zap.String("pass_token", p.Token),
		zap.Int64("seq", p.Seq),
		zap.String("source", string(c.Source)),
		zap.String("operation", string(c.Op)),
		zap.String("entity_id", c.ID),
	)

	changedBy := c.ChangedBy
	if changedBy == "" {
		changedBy = e.changedBy
	}
	rec, err := e.store.RecordChange(ctx, c.Source, c.Op, c.ID, c.Data, changedBy, p.Token)
	if err != nil {
		log.Error("change log write failed", zap.Error(err))
		return report, fmt.Errorf("sync %s %s: %w", c.Source, c.ID, err)
	}
	report.Version = rec.Version

	for _, target := range rule.Targets {
		h, ok := rule.Handlers[target]
		if !ok {
			report.Targets = append(report.Targets, TargetResult{Target: target})
			continue
		}
		err := runHandler(ctx, h, p, c)
		result := TargetResult{Target: target, Handled: true}
		if err != nil {
			result.Err = NewHandlerError(p.Token, c.Source, target, err)
			log.Error("propagation target failed", zap.Stringer("target", target), zap.Error(err))
		}
		report.Targets = append(report.Targets, result)
	}
	report.Outcomes = p.outcomes

	syncErr := report.Err()
	e.completed(rule.Description(), syncErr)
	if syncErr != nil {
		return report, syncErr
	}
	log.Info("propagation completed", zap.Int("calculations", len(p.outcomes)))
	return report, nil
}

func runHandler(ctx context.Context, h Handler, p *Pass, c Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, p, c)
}

// Apply persists a change and then propagates it.
//
// Add and update write Data through the store; the entity stored before an
// update becomes Prior. Delete reads the stored entity into Data before
// removing it. A change naming an entity that does not exist, or an add or
// update without a payload of the right type, fails with UNKNOWN_ENTITY
// and nothing is written.
func (e *Engine) Apply(ctx context.Context, c Change) (Report, error) {
	if c.ID == "" {
		c.ID = c.entityID()
	}
	var err error
	switch c.Source {
	case model.KindMaterial:
		c, err = applyEntity(ctx, c, c.Material, e.store.GetMaterial, e.store.UpsertMaterial, e.store.DeleteMaterial)
	case model.KindStream:
		c, err = applyEntity(ctx, c, c.Stream, e.store.GetStream, e.store.UpsertStream, e.store.DeleteStream)
	case model.KindUnit:
		c, err = applyEntity(ctx, c, c.Unit, e.store.GetUnit, e.store.UpsertUnit, e.store.DeleteUnit)
	case model.KindEquipment:
		c, err = applyEntity(ctx, c, c.Equipment, e.store.GetEquipment, e.store.UpsertEquipment, e.store.DeleteEquipment)
	default:
		err = NewUnknownEntityError(c.Source, c.ID, fmt.Errorf("unknown entity kind"))
	}
	if err != nil {
		return Report{Change: c}, err
	}
	e.notifier.Notify(notify.DataUpdated{Module: string(c.Source), ID: c.ID})
	return e.Sync(ctx, c)
}

func applyEntity[T any](
	ctx context.Context,
	c Change,
	current func() (T, bool),
	get func(context.Context, string) (T, error),
	upsert func(context.Context, T) error,
	del func(context.Context, string) (bool, error),
) (Change, error) {
	switch c.Op {
	case model.OpAdd, model.OpUpdate:
		v, ok := current()
		if !ok {
			return c, NewUnknownEntityError(c.Source, c.ID, fmt.Errorf("%s without %s payload", c.Op, c.Source))
		}
		prior, err := get(ctx, c.ID)
		switch {
		case err == nil:
			c.Prior = prior
		case !errors.Is(err, model.ErrNotFound):
			return c, fmt.Errorf("apply %s %s: %w", c.Source, c.ID, err)
		}
		if err := upsert(ctx, v); err != nil {
			return c, fmt.Errorf("apply %s %s: %w", c.Source, c.ID, err)
		}
		c.Data = v
	case model.OpDelete:
		prior, err := get(ctx, c.ID)
		if errors.Is(err, model.ErrNotFound) {
			return c, NewUnknownEntityError(c.Source, c.ID, err)
		}
		if err != nil {
			return c, fmt.Errorf("apply %s %s: %w", c.Source, c.ID, err)
		}
		if _, err := del(ctx, c.ID); err != nil {
			return c, fmt.Errorf("apply %s %s: %w", c.Source, c.ID, err)
		}
		c.Data = prior
	default:
		return c, fmt.Errorf("apply %s %s: unknown operation %q", c.Source, c.ID, c.Op)
	}
	return c, nil
}

// CalculateAll runs the mass, heat and water calculators on every process
// unit, in unit id order. Used for a full-project recompute, for example
// after an import.
func (e *Engine) CalculateAll(ctx context.Context) (Report, error) {
	units, err := e.store.ListUnits(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("calculate all: %w", err)
	}

	p := e.beginPass()
	defer e.endPass(p)
	report := Report{PassToken: p.Token, Seq: p.Seq, Dispatched: true}

	var errs []error
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		e.logger.Debug("calculating unit", zap.String("pass_token", p.Token), zap.String("unit_id", u.ID))
		for _, calc := range []balance.CalcType{balance.CalcMass, balance.CalcHeat, balance.CalcWater} {
			if err := p.Calculate(ctx, calc, u.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	report.Outcomes = p.outcomes

	allErr := errors.Join(errs...)
	e.completed(CalculateAllDescription, allErr)
	if allErr != nil {
		return report, fmt.Errorf("calculate all: %w", allErr)
	}
	e.logger.Info("all balances calculated",
		zap.String("pass_token", p.Token),
		zap.Int("units", len(units)),
		zap.Int("calculations", len(p.outcomes)),
	)
	return report, nil
}

func (e *Engine) completed(description string, err error) {
	ev := notify.SyncCompleted{Description: description, Success: err == nil, Message: "synchronized"}
	if err != nil {
		ev.Message = failureMessage(err)
	}
	e.notifier.Notify(ev)
}

// failureMessage flattens joined errors onto one line.
func failureMessage(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

func (e *Engine) beginPass() *Pass {
	return &Pass{
		Token:  e.tokens.Generate(),
		Seq:    e.passes.Add(1),
		engine: e,
		quota:  NewQuotaEnforcer(e.maxCalculations),
	}
}

func (e *Engine) endPass(p *Pass) {
	e.processed.Clear(p.Token)
}
