package planner

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/roomplan/model"
	"github.com/nstehr/roomplan/panel"
	"github.com/nstehr/roomplan/room"
	"github.com/nstehr/roomplan/rules"
)

// ErrNoBrush is returned by Place when no structure kind is selected.
var ErrNoBrush = errors.New("no brush selected")

// Session owns the mutable state of one planning session. It is driven from
// a single goroutine and does no locking.
type Session struct {
	ID       string
	Settings model.Settings

	engine  *rules.Engine
	terrain *model.TerrainMap
	store   *room.Store
}

func NewSession(engine *rules.Engine) *Session {
	return &Session{
		ID:       uuid.New().String(),
		Settings: model.NewSettings(),
		engine:   engine,
		terrain:  model.NewTerrainMap(),
		store:    room.New(),
	}
}

// Snapshot is what a shell needs to redraw the control panel.
type Snapshot struct {
	Session    string                  `json:"session"`
	Settings   model.Settings          `json:"settings"`
	Levels     []int                   `json:"levels"`
	Brushes    []panel.Brush           `json:"brushes"`
	Structures map[string][]model.Tile `json:"structures"`
	Terrain    map[string]int          `json:"terrain"` // non-plain tile counts by kind name
}

func (s *Session) SetRCL(level int) error {
	if err := s.Settings.SetRCL(level); err != nil {
		return err
	}
	slog.Info("rcl changed", "session", s.ID, "rcl", level)
	return nil
}

// SelectBrush selects a kind by kind or display name. An empty name clears
// the brush.
func (s *Session) SelectBrush(name string) (rules.Entry, error) {
	if name == "" {
		s.Settings.Brush = ""
		return rules.Entry{}, nil
	}
	e, err := s.engine.Catalog().Resolve(name)
	if err != nil {
		return rules.Entry{}, err
	}
	s.Settings.Brush = e.Kind
	slog.Debug("brush selected", "session", s.ID, "brush", e.Kind, "input", name)
	return e, nil
}

// Hover records the tile under the cursor. Off-grid tiles clear it.
func (s *Session) Hover(tile model.Tile) {
	if !tile.Valid() {
		tile = -1
	}
	s.Settings.Hover = tile
}

// Place puts the selected brush on tile.
func (s *Session) Place(tile model.Tile) (rules.Verdict, error) {
	if s.Settings.Brush == "" {
		return rules.Verdict{}, ErrNoBrush
	}
	return s.PlaceKind(tile, s.Settings.Brush)
}

// PlaceKind puts kind on tile, checked against the current level and the
// tile's terrain.
func (s *Session) PlaceKind(tile model.Tile, kind string) (rules.Verdict, error) {
	cond := room.Conditions{Level: s.Settings.RCL, Terrain: s.terrain.At(tile)}
	v, err := s.store.Place(tile, kind, s.engine, cond)
	if err != nil {
		slog.Warn("placement rejected", "session", s.ID, "kind", kind, "tile", tile, "error", err)
		return v, err
	}
	x, y := tile.XY()
	slog.Info("structure placed", "session", s.ID, "kind", kind, "x", x, "y", y, "count", s.store.Count(kind))
	return v, nil
}

func (s *Session) Remove(tile model.Tile) (string, error) {
	kind, err := s.store.Remove(tile)
	if err != nil {
		return "", err
	}
	x, y := tile.XY()
	slog.Info("structure removed", "session", s.ID, "kind", kind, "x", x, "y", y)
	return kind, nil
}

// SetTerrain paints a single tile. Structures already standing there are
// kept; the panel re-evaluates them on the next snapshot.
func (s *Session) SetTerrain(tile model.Tile, kind model.TerrainKind) error {
	if !tile.Valid() {
		return fmt.Errorf("set terrain at %d: %w", tile, room.ErrInvalidTile)
	}
	s.terrain.Set(tile, kind)
	x, y := tile.XY()
	slog.Debug("terrain painted", "session", s.ID, "x", x, "y", y, "terrain", kind)
	return nil
}

// ToggleDrawer flips the auxiliary panel flag and returns the new state.
func (s *Session) ToggleDrawer() bool {
	s.Settings.BottomDrawerOpen = !s.Settings.BottomDrawerOpen
	return s.Settings.BottomDrawerOpen
}

func (s *Session) WipeStructures() {
	n := s.store.Len()
	s.store.WipeStructures()
	slog.Info("structures wiped", "session", s.ID, "removed", n)
}

func (s *Session) WipeTerrain() {
	n := s.terrain.Len()
	s.terrain.Wipe()
	slog.Info("terrain wiped", "session", s.ID, "removed", n)
}

// LoadTerrain replaces the terrain with an encoded room terrain string. The
// structures are wiped too unless keepStructures is set. A malformed string
// changes nothing.
func (s *Session) LoadTerrain(encoded string, keepStructures bool) error {
	tiles, err := model.ParseTerrain(encoded)
	if err != nil {
		return fmt.Errorf("load terrain: %w", err)
	}
	s.WipeTerrain()
	if !keepStructures {
		s.WipeStructures()
	}
	if err := s.terrain.Load(tiles); err != nil {
		return fmt.Errorf("load terrain: %w", err)
	}
	slog.Info("terrain loaded", "session", s.ID,
		"walls", s.terrain.Count(model.Wall), "swamps", s.terrain.Count(model.Swamp))
	return nil
}

// LoadLayout replaces the room with a prepared layout, optionally with its
// own terrain and level. Nothing changes when any part is invalid.
// Capacity and level are not enforced; over-capacity kinds show up as
// errors in the panel.
func (s *Session) LoadLayout(layout map[string][]model.Tile, encodedTerrain string, level int) error {
	if level != 0 && (level < 1 || level > model.MaxRCL) {
		return fmt.Errorf("load layout: rcl %d out of range [1, %d]", level, model.MaxRCL)
	}
	var tiles map[model.Tile]model.TerrainKind
	if encodedTerrain != "" {
		var err error
		if tiles, err = model.ParseTerrain(encodedTerrain); err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
	}
	next := room.New()
	if err := next.Import(layout, s.engine.Catalog()); err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	s.WipeStructures()
	s.store = next
	if tiles != nil {
		s.WipeTerrain()
		if err := s.terrain.Load(tiles); err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
	}
	if level != 0 {
		s.Settings.RCL = level
	}
	slog.Info("layout loaded", "session", s.ID, "structures", s.store.Len(), "rcl", s.Settings.RCL)
	return nil
}

// TerrainAt returns the terrain of tile.
func (s *Session) TerrainAt(tile model.Tile) model.TerrainKind {
	return s.terrain.At(tile)
}

// StructureAt returns the kind placed on tile.
func (s *Session) StructureAt(tile model.Tile) (string, bool) {
	return s.store.At(tile)
}

// Counts returns the placed count per kind.
func (s *Session) Counts() map[string]int {
	return s.store.Counts()
}

// Layout returns a copy of the placed structures by kind.
func (s *Session) Layout() map[string][]model.Tile {
	return s.store.Layout()
}

// Audit checks the room state invariants.
func (s *Session) Audit() error {
	return s.store.Audit()
}

// Brushes computes the panel state. The hovered tile's terrain drives the
// terrain check; without a hovered tile plain is assumed.
func (s *Session) Brushes() []panel.Brush {
	terrain := model.Plain
	if s.Settings.Hover.Valid() {
		terrain = s.terrain.At(s.Settings.Hover)
	}
	return panel.Brushes(s.engine, panel.Input{
		Settings: s.Settings,
		Counts:   s.store.Counts(),
		Terrain:  terrain,
	})
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Session:    s.ID,
		Settings:   s.Settings,
		Levels:     panel.LevelOptions(),
		Brushes:    s.Brushes(),
		Structures: s.store.Layout(),
		Terrain: map[string]int{
			model.Swamp.String(): s.terrain.Count(model.Swamp),
			model.Wall.String():  s.terrain.Count(model.Wall),
		},
	}
}
