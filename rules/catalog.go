package rules

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/nstehr/roomplan/model"
)

// Structure kind constants. Values match the in-game structure type names.
const (
	Spawn           = "spawn"
	Extension       = "extension"
	Road            = "road"
	ConstructedWall = "constructedWall"
	Rampart         = "rampart"
	Link            = "link"
	Storage         = "storage"
	Tower           = "tower"
	Observer        = "observer"
	PowerSpawn      = "powerSpawn"
	Extractor       = "extractor"
	Lab             = "lab"
	Terminal        = "terminal"
	Container       = "container"
	Nuker           = "nuker"
	Factory         = "factory"
	Controller      = "controller" // the room's single mandatory structure
)

// UnlockTable holds the number of instances allowed at each level.
// Index 0 is unused; index i is the allowance at RCL i.
type UnlockTable [model.MaxRCL + 1]int

// controllerStructures is the per-level allowance of every buildable kind.
var controllerStructures = map[string]UnlockTable{
	Spawn:           {0, 1, 1, 1, 1, 1, 1, 2, 3},
	Extension:       {0, 0, 5, 10, 20, 30, 40, 50, 60},
	Road:            {0, 2500, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	ConstructedWall: {0, 0, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	Rampart:         {0, 0, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	Link:            {0, 0, 0, 0, 0, 2, 3, 4, 6},
	Storage:         {0, 0, 0, 0, 1, 1, 1, 1, 1},
	Tower:           {0, 0, 0, 1, 1, 2, 2, 3, 6},
	Observer:        {0, 0, 0, 0, 0, 0, 0, 0, 1},
	PowerSpawn:      {0, 0, 0, 0, 0, 0, 0, 0, 1},
	Extractor:       {0, 0, 0, 0, 0, 0, 1, 1, 1},
	Lab:             {0, 0, 0, 0, 0, 0, 3, 6, 10},
	Terminal:        {0, 0, 0, 0, 0, 0, 1, 1, 1},
	Container:       {0, 5, 5, 5, 5, 5, 5, 5, 5},
	Nuker:           {0, 0, 0, 0, 0, 0, 0, 0, 1},
	Factory:         {0, 0, 0, 0, 0, 0, 0, 1, 1},
	Controller:      {0, 1, 1, 1, 1, 1, 1, 1, 1},
}

// displayOrder is the order brushes are listed in.
var displayOrder = []struct{ kind, name string }{
	{Spawn, "Spawn"},
	{Extension, "Extension"},
	{Road, "Road"},
	{ConstructedWall, "Wall"},
	{Rampart, "Rampart"},
	{Link, "Link"},
	{Storage, "Storage"},
	{Tower, "Tower"},
	{Observer, "Observer"},
	{PowerSpawn, "Power Spawn"},
	{Extractor, "Extractor"},
	{Lab, "Lab"},
	{Terminal, "Terminal"},
	{Container, "Container"},
	{Nuker, "Nuker"},
	{Factory, "Factory"},
	{Controller, "Controller"},
}

// Entry is the static description of one structure kind.
type Entry struct {
	Kind          string      `json:"key"`
	Name          string      `json:"name"`
	Image         string      `json:"image"`
	Total         int         `json:"total"`         // max instances for the room at any level
	RequiredLevel int         `json:"requiredLevel"` // first level with a non-zero allowance
	Exempt        bool        `json:"exempt,omitempty"`
	Unlocks       UnlockTable `json:"-"`
}

// NewEntry derives Total and RequiredLevel from the unlock table.
func NewEntry(kind, name string, unlocks UnlockTable) Entry {
	e := Entry{
		Kind:    kind,
		Name:    name,
		Image:   "/images/structures/" + kind + ".png",
		Total:   unlocks[model.MaxRCL],
		Unlocks: unlocks,
	}
	for level := 1; level <= model.MaxRCL; level++ {
		if unlocks[level] > 0 {
			e.RequiredLevel = level
			break
		}
	}
	return e
}

// Allowed returns how many instances may exist at the given level. Entries
// built without an unlock table allow their full Total once unlocked.
func (e Entry) Allowed(level int) int {
	if level < 1 {
		return 0
	}
	if level > model.MaxRCL {
		level = model.MaxRCL
	}
	if e.Unlocks != (UnlockTable{}) {
		return e.Unlocks[level]
	}
	if level >= e.RequiredLevel {
		return e.Total
	}
	return 0
}

// Catalog is the immutable set of structure kinds known to the planner.
type Catalog struct {
	entries []Entry
	byKind  map[string]int
}

// NewCatalog validates entries and indexes them by kind. Entry order is
// preserved for display.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byKind:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Kind == "" {
			return nil, fmt.Errorf("catalog entry %q has no kind", e.Name)
		}
		if e.Total <= 0 {
			return nil, fmt.Errorf("catalog entry %q: total must be positive, got %d", e.Kind, e.Total)
		}
		if e.RequiredLevel < 1 || e.RequiredLevel > model.MaxRCL {
			return nil, fmt.Errorf("catalog entry %q: required level %d out of range [1, %d]", e.Kind, e.RequiredLevel, model.MaxRCL)
		}
		if _, dup := c.byKind[e.Kind]; dup {
			return nil, fmt.Errorf("catalog entry %q defined twice", e.Kind)
		}
		if e.Name == "" {
			e.Name = e.Kind
		}
		c.byKind[e.Kind] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// DefaultCatalog returns the standard structure set. The controller is exempt
// from level gating.
func DefaultCatalog() *Catalog {
	entries := make([]Entry, 0, len(displayOrder))
	for _, d := range displayOrder {
		e := NewEntry(d.kind, d.name, controllerStructures[d.kind])
		e.Exempt = d.kind == Controller
		entries = append(entries, e)
	}
	c, err := NewCatalog(entries)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Entry looks up a kind.
func (c *Catalog) Entry(kind string) (Entry, bool) {
	i, ok := c.byKind[kind]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns every entry in display order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Kinds returns every kind in display order.
func (c *Catalog) Kinds() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Kind
	}
	return out
}

// Resolve finds an entry from user input. Kinds and display names match
// case-insensitively and ignoring spaces; otherwise the closest name within a
// small edit distance wins.
func (c *Catalog) Resolve(input string) (Entry, error) {
	want := normalizeName(input)
	if want == "" {
		return Entry{}, fmt.Errorf("%w: empty name", ErrUnknownKind)
	}
	for _, e := range c.entries {
		if normalizeName(e.Kind) == want || normalizeName(e.Name) == want {
			return e, nil
		}
	}

	best, bestDist := -1, 0
	for i, e := range c.entries {
		for _, alias := range []string{normalizeName(e.Kind), normalizeName(e.Name)} {
			dist := levenshtein.ComputeDistance(want, alias)
			if dist > levenshteinLimit(len(alias)) {
				continue
			}
			if best < 0 || dist < bestDist {
				best, bestDist = i, dist
			}
		}
	}
	if best < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKind, input)
	}
	return c.entries[best], nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
