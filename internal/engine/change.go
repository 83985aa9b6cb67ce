package engine

import "github.com/virmuran/ProcessDesignPro/internal/model"

// Change describes one entity mutation fed to the engine.
//
// Data is the entity after an add or update and the entity as it was
// before a delete. Prior is the entity before an update, when known. Both
// hold a model.Material, model.Stream, model.ProcessUnit or
// model.Equipment (or a pointer to one) matching Source.
type Change struct {
	Source    model.Kind      `json:"source" yaml:"source"`
	Op        model.Operation `json:"operation" yaml:"operation"`
	ID        string          `json:"id" yaml:"id"`
	Data      any             `json:"data,omitempty" yaml:"data,omitempty"`
	Prior     any             `json:"-" yaml:"-"`
	ChangedBy string          `json:"changed_by,omitempty" yaml:"changed_by,omitempty"`
}

func payload[T any](v any) (T, bool) {
	switch p := v.(type) {
	case T:
		return p, true
	case *T:
		if p != nil {
			return *p, true
		}
	}
	var zero T
	return zero, false
}

// Material returns the material payload.
func (c Change) Material() (model.Material, bool) { return payload[model.Material](c.Data) }

// PriorMaterial returns the material as it was before an update.
func (c Change) PriorMaterial() (model.Material, bool) { return payload[model.Material](c.Prior) }

// Stream returns the stream payload.
func (c Change) Stream() (model.Stream, bool) { return payload[model.Stream](c.Data) }

// PriorStream returns the stream as it was before an update.
func (c Change) PriorStream() (model.Stream, bool) { return payload[model.Stream](c.Prior) }

// Unit returns the process unit payload.
func (c Change) Unit() (model.ProcessUnit, bool) { return payload[model.ProcessUnit](c.Data) }

// Equipment returns the equipment payload.
func (c Change) Equipment() (model.Equipment, bool) { return payload[model.Equipment](c.Data) }

// entityID returns the id carried by the payload, or "" when there is none.
func (c Change) entityID() string {
	switch c.Source {
	case model.KindMaterial:
		if m, ok := c.Material(); ok {
			return m.ID
		}
	case model.KindStream:
		if s, ok := c.Stream(); ok {
			return s.ID
		}
	case model.KindUnit:
		if u, ok := c.Unit(); ok {
			return u.ID
		}
	case model.KindEquipment:
		if e, ok := c.Equipment(); ok {
			return e.ID
		}
	}
	return ""
}
