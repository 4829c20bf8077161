package room

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/roomplan/model"
	"github.com/nstehr/roomplan/rules"
)

var (
	ErrTileOccupied  = errors.New("tile occupied")
	ErrTileEmpty     = errors.New("tile empty")
	ErrInvalidTile   = errors.New("tile out of range")
	ErrDuplicateTile = errors.New("tile used more than once")
)

// Checker decides whether one more structure may be placed. *rules.Engine
// satisfies it.
type Checker interface {
	Check(kind string, level, placed int, terrain model.TerrainKind) rules.Verdict
}

// Conditions are the room inputs a placement is checked against.
type Conditions struct {
	Level   int
	Terrain model.TerrainKind // terrain of the target tile
}

// Store is the room state: structures by kind (in placement order) and
// occupancy by tile. Both indices change together inside every exported
// method. It is not safe for concurrent use.
type Store struct {
	structures map[string][]model.Tile
	grid       map[model.Tile]string
}

func New() *Store {
	return &Store{
		structures: make(map[string][]model.Tile),
		grid:       make(map[model.Tile]string),
	}
}

// Place puts one kind on tile after the checker accepts it. The returned
// verdict is meaningful whenever the tile itself was usable.
func (s *Store) Place(tile model.Tile, kind string, check Checker, cond Conditions) (rules.Verdict, error) {
	if !tile.Valid() {
		return rules.Verdict{Kind: kind}, fmt.Errorf("place %s at %d: %w", kind, tile, ErrInvalidTile)
	}
	if occupant, ok := s.grid[tile]; ok {
		return rules.Verdict{Kind: kind}, fmt.Errorf("place %s at %d: %w by %s", kind, tile, ErrTileOccupied, occupant)
	}

	v := check.Check(kind, cond.Level, len(s.structures[kind]), cond.Terrain)
	if err := v.Err(); err != nil {
		return v, err
	}

	s.structures[kind] = append(s.structures[kind], tile)
	s.grid[tile] = kind
	return v, nil
}

// Remove clears tile and returns the kind that stood there.
func (s *Store) Remove(tile model.Tile) (string, error) {
	kind, ok := s.grid[tile]
	if !ok {
		return "", fmt.Errorf("remove at %d: %w", tile, ErrTileEmpty)
	}

	tiles := s.structures[kind]
	if i := slices.Index(tiles, tile); i >= 0 {
		tiles = slices.Delete(tiles, i, i+1)
	}
	if len(tiles) == 0 {
		delete(s.structures, kind)
	} else {
		s.structures[kind] = tiles
	}
	delete(s.grid, tile)
	return kind, nil
}

// WipeStructures drops every placement in one step.
func (s *Store) WipeStructures() {
	s.structures = make(map[string][]model.Tile)
	s.grid = make(map[model.Tile]string)
}

// Import adds an externally designed layout without capacity or level
// checks, so the result may be over capacity. Unknown kinds, invalid tiles
// and tiles already in use are rejected and leave the store untouched.
func (s *Store) Import(layout map[string][]model.Tile, catalog *rules.Catalog) error {
	seen := mapset.New[model.Tile]()
	for kind, tiles := range layout {
		if _, ok := catalog.Entry(kind); !ok {
			return fmt.Errorf("import %q: %w", kind, rules.ErrUnknownKind)
		}
		for _, t := range tiles {
			if !t.Valid() {
				return fmt.Errorf("import %s at %d: %w", kind, t, ErrInvalidTile)
			}
			if _, used := s.grid[t]; used || seen.Has(t) {
				return fmt.Errorf("import %s at %d: %w", kind, t, ErrDuplicateTile)
			}
			seen.Put(t)
		}
	}

	// Deterministic append order keeps Layout stable for callers.
	for _, kind := range catalog.Kinds() {
		for _, t := range layout[kind] {
			s.structures[kind] = append(s.structures[kind], t)
			s.grid[t] = kind
		}
	}
	return nil
}

// At returns the kind occupying tile.
func (s *Store) At(tile model.Tile) (string, bool) {
	kind, ok := s.grid[tile]
	return kind, ok
}

// Count returns how many structures of kind are placed.
func (s *Store) Count(kind string) int {
	return len(s.structures[kind])
}

// Counts returns the placed count of every kind present.
func (s *Store) Counts() map[string]int {
	out := make(map[string]int, len(s.structures))
	for kind, tiles := range s.structures {
		out[kind] = len(tiles)
	}
	return out
}

// Tiles returns the tiles of kind in placement order.
func (s *Store) Tiles(kind string) []model.Tile {
	return slices.Clone(s.structures[kind])
}

// Layout returns a copy of the structures-by-kind index.
func (s *Store) Layout() map[string][]model.Tile {
	out := make(map[string][]model.Tile, len(s.structures))
	for kind, tiles := range s.structures {
		out[kind] = slices.Clone(tiles)
	}
	return out
}

// Len returns the number of occupied tiles.
func (s *Store) Len() int {
	return len(s.grid)
}

// Audit verifies that the two indices describe the same placements.
func (s *Store) Audit() error {
	seen := mapset.New[model.Tile]()
	for kind, tiles := range s.structures {
		for _, t := range tiles {
			if seen.Has(t) {
				return fmt.Errorf("audit: %s at %d: %w", kind, t, ErrDuplicateTile)
			}
			seen.Put(t)
			if got, ok := s.grid[t]; !ok || got != kind {
				return fmt.Errorf("audit: %s at %d indexed as %q in grid", kind, t, got)
			}
		}
	}
	if seen.Size() != len(s.grid) {
		return fmt.Errorf("audit: grid has %d tiles, structures list %d", len(s.grid), seen.Size())
	}
	return nil
}
