package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
)

func TestProcessedSet_MarkOncePerPass(t *testing.T) {
	p := NewProcessedSet()

	assert.False(t, p.Seen("pass-1", balance.CalcMass, "U1"))
	assert.True(t, p.Mark("pass-1", balance.CalcMass, "U1"))
	assert.False(t, p.Mark("pass-1", balance.CalcMass, "U1"), "second mark in the same pass")
	assert.True(t, p.Seen("pass-1", balance.CalcMass, "U1"))

	// Other calculators, units and passes are independent.
	assert.True(t, p.Mark("pass-1", balance.CalcHeat, "U1"))
	assert.True(t, p.Mark("pass-1", balance.CalcMass, "U2"))
	assert.True(t, p.Mark("pass-2", balance.CalcMass, "U1"))

	assert.Equal(t, 2, p.HistorySize())
	assert.Equal(t, 3, p.PassSize("pass-1"))
}

func TestProcessedSet_Clear(t *testing.T) {
	p := NewProcessedSet()
	p.Mark("pass-1", balance.CalcMass, "U1")

	p.Clear("pass-1")

	assert.Equal(t, 0, p.HistorySize())
	assert.True(t, p.Mark("pass-1", balance.CalcMass, "U1"), "a reused token starts empty")
}

func TestQuotaEnforcer(t *testing.T) {
	q := NewQuotaEnforcer(2)

	assert.NoError(t, q.Check("pass-1"))
	assert.NoError(t, q.Check("pass-1"))
	err := q.Check("pass-1")

	assert.True(t, IsStepsExceededError(err))
	assert.EqualError(t, err, "pass pass-1 exceeded calculation budget: 3 calculations > 2 limit")
	assert.Equal(t, 3, q.Current())
	assert.Equal(t, 2, q.MaxSteps())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("pass-1", "pass-2")

	assert.Equal(t, "pass-1", g.Generate())
	assert.Equal(t, "pass-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	g := UUIDv7Generator{}

	a, b := g.Generate(), g.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a[:13], b[:13], "timestamp prefix is non-decreasing")
}

func TestSyncError_Message(t *testing.T) {
	err := NewHandlerError("pass-1", "stream", TargetHeatBalance, assert.AnError)

	assert.True(t, IsHandlerError(err))
	assert.False(t, IsUnknownEntity(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "HANDLER_FAILED: stream -> heat_balance failed (pass=pass-1, target=heat_balance)")
}

type recordingCalc struct {
	ran []string
}

func (c *recordingCalc) Run(_ context.Context, calc balance.CalcType, unitID string) balance.Outcome {
	c.ran = append(c.ran, unitID)
	return balance.Outcome{Calc: calc, UnitID: unitID, Kind: balance.Computed}
}

func TestPassCalculate_RefusedPairIsNotMarked(t *testing.T) {
	calc := &recordingCalc{}
	e := New(nil, calc, WithMaxCalculations(1))
	p := e.beginPass()
	defer e.endPass(p)

	err := p.Calculate(context.Background(), balance.CalcMass, "U1", "U2")

	assert.True(t, IsStepsExceededError(err))
	assert.Equal(t, []string{"U1"}, calc.ran)
	assert.True(t, e.processed.Seen(p.Token, balance.CalcMass, "U1"))
	assert.False(t, e.processed.Seen(p.Token, balance.CalcMass, "U2"), "over-budget pair stays open")
	assert.Equal(t, 1, e.processed.PassSize(p.Token))
}

func TestPassCalculate_DuplicatesDoNotSpendBudget(t *testing.T) {
	calc := &recordingCalc{}
	e := New(nil, calc, WithMaxCalculations(2))
	p := e.beginPass()
	defer e.endPass(p)

	err := p.Calculate(context.Background(), balance.CalcMass, "U1", "U1", "U2")

	assert.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, calc.ran)
	assert.Equal(t, 2, p.quota.Current())
}
