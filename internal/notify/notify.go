// Package notify carries the events a propagation pass emits to the
// presentation layer: entity updates, finished passes and finished
// calculations.
package notify

import (
	"fmt"
	"sync"
)

// EventType names an event family.
type EventType string

const (
	TypeDataUpdated          EventType = "data_updated"
	TypeSyncCompleted        EventType = "sync_completed"
	TypeCalculationCompleted EventType = "calculation_completed"
)

// Event is one of DataUpdated, SyncCompleted or CalculationCompleted.
type Event interface {
	Type() EventType
	// Line renders the event as a stable single line for traces.
	Line() string
}

// DataUpdated reports that an entity was written.
type DataUpdated struct {
	Module string `json:"module"`
	ID     string `json:"id"`
}

func (DataUpdated) Type() EventType { return TypeDataUpdated }

func (e DataUpdated) Line() string {
	return fmt.Sprintf("%s %s %s", TypeDataUpdated, e.Module, e.ID)
}

// SyncCompleted reports the end of a propagation pass. Success is false
// when any target handler failed.
type SyncCompleted struct {
	Description string `json:"description"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
}

func (SyncCompleted) Type() EventType { return TypeSyncCompleted }

func (e SyncCompleted) Line() string {
	result := "ok"
	if !e.Success {
		result = "failed"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s %s %s", TypeSyncCompleted, result, e.Description)
	}
	return fmt.Sprintf("%s %s %s: %s", TypeSyncCompleted, result, e.Description, e.Message)
}

// CalculationCompleted carries a calculator result for one unit.
type CalculationCompleted struct {
	CalcType string `json:"calc_type"`
	UnitID   string `json:"unit_id"`
	Status   string `json:"status"`
	Results  any    `json:"results"`
}

func (CalculationCompleted) Type() EventType { return TypeCalculationCompleted }

func (e CalculationCompleted) Line() string {
	return fmt.Sprintf("%s %s %s %s", TypeCalculationCompleted, e.CalcType, e.UnitID, e.Status)
}

// Notifier receives events.
type Notifier interface {
	Notify(Event)
}

// Func adapts a function to Notifier.
type Func func(Event)

func (f Func) Notify(e Event) { f(e) }

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(Event) {}

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []Notifier
}

// NewBus returns a bus with the given subscribers.
func NewBus(subs ...Notifier) *Bus {
	return &Bus{subs: subs}
}

// Subscribe adds a subscriber.
func (b *Bus) Subscribe(n Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, n)
}

// Notify delivers e to every subscriber.
func (b *Bus) Notify(e Event) {
	b.mu.RLock()
	subs := make([]Notifier, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.Notify(e)
	}
}

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Calculations returns the recorded calculation events, optionally only
// those of one calculator type.
func (r *Recorder) Calculations(calcType string) []CalculationCompleted {
	var out []CalculationCompleted
	for _, e := range r.Events() {
		c, ok := e.(CalculationCompleted)
		if !ok {
			continue
		}
		if calcType == "" || c.CalcType == calcType {
			out = append(out, c)
		}
	}
	return out
}

// Trace returns the recorded events rendered one per line.
func (r *Recorder) Trace() []string {
	events := r.Events()
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.Line()
	}
	return lines
}

// Reset discards the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
