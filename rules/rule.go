package rules

import "github.com/expr-lang/expr/vm"

// DefaultTerrainCondition applies to kinds without their own TerrainRule.
const DefaultTerrainCondition = `Buildable()`

// TerrainRule restricts the terrain one structure kind may be placed on.
// The condition is an expr expression evaluated against a PlacementEnv.
type TerrainRule struct {
	Kind         string `json:"kind"`
	ConditionSrc string `json:"condition"` // expr source (preserved for serialization)
	program      *vm.Program
}

// DefaultTerrainRules is the standard compatibility table. Every kind not
// listed falls back to DefaultTerrainCondition.
func DefaultTerrainRules() []*TerrainRule {
	return []*TerrainRule{
		// Roads can tunnel through natural walls.
		{Kind: Road, ConditionSrc: `true`},
		{Kind: Controller, ConditionSrc: `true`},
	}
}
