package rules

import "errors"

// Placement rejection reasons. A Verdict reports any combination of them.
var (
	ErrUnknownKind        = errors.New("unknown structure kind")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrLevelLocked        = errors.New("locked by room level")
	ErrTerrainUnbuildable = errors.New("terrain unbuildable")
)
