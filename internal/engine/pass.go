package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
)

// Pass is one propagation pass. Handlers run calculations and emit
// notifications through it.
type Pass struct {
	Token string
	Seq   int64

	engine   *Engine
	quota    *QuotaEnforcer
	outcomes []balance.Outcome
}

// Store returns the engine's store.
func (p *Pass) Store() Store {
	return p.engine.store
}

// Logger returns a logger tagged with the pass token.
func (p *Pass) Logger() *zap.Logger {
	return p.engine.logger.With(zap.String("pass_token", p.Token))
}

// Notify forwards an event to the engine's notifier.
func (p *Pass) Notify(ev notify.Event) {
	p.engine.notifier.Notify(ev)
}

// Calculate runs calc on each unit not yet processed by calc in this pass.
// Skipped runs are not errors. Failed runs are collected and returned
// joined after every unit has been tried.
func (p *Pass) Calculate(ctx context.Context, calc balance.CalcType, unitIDs ...string) error {
	var errs []error
	for _, unitID := range unitIDs {
		if p.engine.processed.Seen(p.Token, calc, unitID) {
			continue
		}
		if err := p.quota.Check(p.Token); err != nil {
			return errors.Join(append(errs, err)...)
		}
		p.engine.processed.Mark(p.Token, calc, unitID)
		out := p.engine.calc.Run(ctx, calc, unitID)
		p.outcomes = append(p.outcomes, out)
		if out.Failed() {
			errs = append(errs, out.Err)
		}
	}
	return errors.Join(errs...)
}

// Outcomes returns the calculations run so far, in run order.
func (p *Pass) Outcomes() []balance.Outcome {
	return p.outcomes
}
