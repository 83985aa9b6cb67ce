package model

import "fmt"

// Kind identifies an entity family that can be the source of a change.
type Kind string

const (
	KindMaterial  Kind = "material"
	KindStream    Kind = "stream"
	KindUnit      Kind = "unit"
	KindEquipment Kind = "equipment"
)

// Kinds lists every propagating entity kind in a stable order.
var Kinds = []Kind{KindMaterial, KindStream, KindUnit, KindEquipment}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Operation is the kind of mutation applied to an entity.
type Operation string

const (
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ParseOperation converts a user-supplied string into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpAdd, OpUpdate, OpDelete:
		return Operation(s), nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Status is the lifecycle state of a computed balance record.
type Status string

const (
	StatusPending            Status = "pending"
	StatusCalculated         Status = "calculated"
	StatusBalanced           Status = "balanced"
	StatusUnbalanced         Status = "unbalanced"
	StatusNeedsRecalculation Status = "needs_recalculation"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCalculated, StatusBalanced, StatusUnbalanced, StatusNeedsRecalculation:
		return true
	}
	return false
}
