package engine

import (
	"sync"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
)

// ProcessedSet tracks which (calculator, unit) pairs already ran in a pass.
//
// A stream connecting two units, or a material present in several streams,
// reaches the same unit through more than one path. The set makes sure each
// calculator runs once per unit per pass.
//
// The history is in-memory only and cleared when the pass ends.
type ProcessedSet struct {
	mu      sync.Mutex
	history map[string]map[string]bool // map[pass_token]map[calc+unit]bool
}

// NewProcessedSet creates an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{
		history: make(map[string]map[string]bool),
	}
}

func processedKey(calc balance.CalcType, unitID string) string {
	return string(calc) + ":" + unitID
}

// Seen reports whether calc already ran for unitID in this pass.
func (p *ProcessedSet) Seen(passToken string, calc balance.CalcType, unitID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.history[passToken] == nil {
		return false
	}
	return p.history[passToken][processedKey(calc, unitID)]
}

// Mark records that calc ran for unitID in this pass. It reports false when
// the pair was already marked, so callers can test and set in one step.
func (p *ProcessedSet) Mark(passToken string, calc balance.CalcType, unitID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.history[passToken] == nil {
		p.history[passToken] = make(map[string]bool)
	}
	key := processedKey(calc, unitID)
	if p.history[passToken][key] {
		return false
	}
	p.history[passToken][key] = true
	return true
}

// Clear removes all history for a pass token.
func (p *ProcessedSet) Clear(passToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.history, passToken)
}

// HistorySize returns the number of passes with tracked history.
func (p *ProcessedSet) HistorySize() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.history)
}

// PassSize returns the number of pairs tracked for a pass.
func (p *ProcessedSet) PassSize(passToken string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.history[passToken])
}
