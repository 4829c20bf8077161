package rules

import (
	"errors"
	"fmt"
)

// Verdict is the outcome of a placement check. Each flag is computed
// independently so callers can explain why a placement is refused.
type Verdict struct {
	Kind               string `json:"kind"`
	UnknownKind        bool   `json:"unknownKind,omitempty"`
	CapacityExceeded   bool   `json:"capacityExceeded,omitempty"` // placed >= total
	OverCapacity       bool   `json:"overCapacity,omitempty"`     // placed > total; inconsistent data
	LevelLocked        bool   `json:"levelLocked,omitempty"`
	TerrainUnbuildable bool   `json:"terrainUnbuildable,omitempty"`
}

// Allowed reports whether one more instance may be placed.
// OverCapacity implies CapacityExceeded and needs no separate check.
func (v Verdict) Allowed() bool {
	return !v.UnknownKind && !v.CapacityExceeded && !v.LevelLocked && !v.TerrainUnbuildable
}

// Reasons lists the sentinel error for every failed condition.
func (v Verdict) Reasons() []error {
	var out []error
	if v.UnknownKind {
		out = append(out, ErrUnknownKind)
	}
	if v.CapacityExceeded {
		out = append(out, ErrCapacityExceeded)
	}
	if v.LevelLocked {
		out = append(out, ErrLevelLocked)
	}
	if v.TerrainUnbuildable {
		out = append(out, ErrTerrainUnbuildable)
	}
	return out
}

// Err returns nil for an allowed placement. Otherwise the error matches every
// failed reason with errors.Is.
func (v Verdict) Err() error {
	reasons := v.Reasons()
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("place %s: %w", v.Kind, errors.Join(reasons...))
}
