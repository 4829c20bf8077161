package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/roomplan/model"
)

// Engine decides whether one more structure of a kind may be placed.
// It is immutable after NewEngine and safe to share between sessions.
type Engine struct {
	catalog  *Catalog
	terrain  map[string]*TerrainRule
	fallback *TerrainRule
}

// NewEngine compiles the terrain rules into expr bytecode. Rules naming a
// kind missing from the catalog are rejected so typos surface at startup.
func NewEngine(catalog *Catalog, rules []*TerrainRule) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("engine needs a catalog")
	}
	fallback := &TerrainRule{Kind: "*", ConditionSrc: DefaultTerrainCondition}
	if err := compileRule(fallback); err != nil {
		return nil, err
	}

	byKind := make(map[string]*TerrainRule, len(rules))
	for _, r := range rules {
		if _, ok := catalog.Entry(r.Kind); !ok {
			return nil, fmt.Errorf("terrain rule for %q: %w", r.Kind, ErrUnknownKind)
		}
		if _, dup := byKind[r.Kind]; dup {
			return nil, fmt.Errorf("terrain rule for %q defined twice", r.Kind)
		}
		compiled := *r
		if err := compileRule(&compiled); err != nil {
			return nil, err
		}
		byKind[r.Kind] = &compiled
	}

	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	slog.Debug("placement engine ready", "kinds", len(catalog.entries), "terrainRules", kinds)

	return &Engine{catalog: catalog, terrain: byKind, fallback: fallback}, nil
}

// DefaultEngine pairs DefaultCatalog with DefaultTerrainRules.
func DefaultEngine() *Engine {
	e, err := NewEngine(DefaultCatalog(), DefaultTerrainRules())
	if err != nil {
		panic(fmt.Sprintf("default engine: %v", err))
	}
	return e
}

// ParseTerrainRules decodes a JSON list of {"kind", "condition"} objects.
func ParseTerrainRules(data []byte) ([]*TerrainRule, error) {
	var rules []*TerrainRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("unmarshal terrain rules: %w", err)
	}
	return rules, nil
}

// Catalog returns the catalog the engine checks against.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// TerrainCompatible reports whether kind may stand on terrain, ignoring
// capacity and level. Unknown kinds are never compatible.
func (e *Engine) TerrainCompatible(kind string, terrain model.TerrainKind) bool {
	if _, ok := e.catalog.Entry(kind); !ok {
		return false
	}
	r, ok := e.terrain[kind]
	if !ok {
		r = e.fallback
	}

	result, err := vm.Run(r.program, newPlacementEnv(kind, terrain))
	if err != nil {
		slog.Warn("terrain rule error", "kind", kind, "terrain", terrain, "error", err)
		return false
	}
	match, ok := result.(bool)
	return ok && match
}

// Check evaluates every placement condition for one more instance of kind.
// placed may exceed the catalog total; the result is still well defined.
func (e *Engine) Check(kind string, level, placed int, terrain model.TerrainKind) Verdict {
	v := Verdict{Kind: kind}
	entry, ok := e.catalog.Entry(kind)
	if !ok {
		v.UnknownKind = true
		return v
	}

	v.CapacityExceeded = placed >= entry.Total
	v.OverCapacity = placed > entry.Total
	v.LevelLocked = !entry.Exempt && level < entry.RequiredLevel
	v.TerrainUnbuildable = !e.TerrainCompatible(kind, terrain)
	return v
}

// CanPlace is Check(...).Allowed().
func (e *Engine) CanPlace(kind string, level, placed int, terrain model.TerrainKind) bool {
	return e.Check(kind, level, placed, terrain).Allowed()
}

func compileRule(r *TerrainRule) error {
	prog, err := expr.Compile(r.ConditionSrc, expr.Env(PlacementEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile terrain rule %q: %w", r.Kind, err)
	}
	r.program = prog
	return nil
}
