package rules

import "github.com/nstehr/roomplan/model"

// PlacementEnv is the environment terrain conditions are evaluated against.
// Its methods are callable from expr expressions.
type PlacementEnv struct {
	Kind    string
	Terrain string // TerrainKind name: "plain", "swamp" or "wall"
}

func newPlacementEnv(kind string, terrain model.TerrainKind) PlacementEnv {
	return PlacementEnv{Kind: kind, Terrain: terrain.String()}
}

func (e PlacementEnv) IsPlain() bool { return e.Terrain == model.Plain.String() }
func (e PlacementEnv) IsSwamp() bool { return e.Terrain == model.Swamp.String() }
func (e PlacementEnv) IsWall() bool  { return e.Terrain == model.Wall.String() }

// Buildable is true for every terrain a regular structure may stand on.
func (e PlacementEnv) Buildable() bool {
	return e.IsPlain() || e.IsSwamp()
}
