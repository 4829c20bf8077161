package model

import (
	"fmt"
	"strings"
)

// TerrainKind classifies a single room tile.
type TerrainKind byte

const (
	Plain TerrainKind = 0 // default for tiles with no entry
	Swamp TerrainKind = 1 // buildable, slow to traverse
	Wall  TerrainKind = 2 // natural wall
)

func (k TerrainKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Swamp:
		return "swamp"
	case Wall:
		return "wall"
	}
	return fmt.Sprintf("terrain(%d)", byte(k))
}

// ParseTerrainKind accepts the names produced by String.
func ParseTerrainKind(s string) (TerrainKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return Plain, nil
	case "swamp":
		return Swamp, nil
	case "wall":
		return Wall, nil
	}
	return Plain, fmt.Errorf("unknown terrain kind %q", s)
}

// Bit flags of the encoded room terrain string. A tile carrying both bits is
// a wall.
const (
	terrainMaskWall  = 1
	terrainMaskSwamp = 2
)

// ParseTerrain decodes a RoomSize*RoomSize digit string (one digit per tile,
// row-major) into a sparse terrain map. Plain tiles are omitted.
func ParseTerrain(encoded string) (map[Tile]TerrainKind, error) {
	encoded = strings.TrimSpace(encoded)
	if len(encoded) != RoomSize*RoomSize {
		return nil, fmt.Errorf("terrain string has %d tiles, want %d", len(encoded), RoomSize*RoomSize)
	}
	out := make(map[Tile]TerrainKind)
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if c < '0' || c > '3' {
			return nil, fmt.Errorf("invalid terrain digit %q at tile %d", c, i)
		}
		mask := c - '0'
		switch {
		case mask&terrainMaskWall != 0:
			out[Tile(i)] = Wall
		case mask&terrainMaskSwamp != 0:
			out[Tile(i)] = Swamp
		}
	}
	return out, nil
}

// TerrainMap is the sparse per-tile terrain of one room. The zero value is an
// all-plain room.
type TerrainMap struct {
	tiles map[Tile]TerrainKind
}

func NewTerrainMap() *TerrainMap {
	return &TerrainMap{tiles: make(map[Tile]TerrainKind)}
}

// At returns the terrain at t. Tiles without an entry are Plain.
func (m *TerrainMap) At(t Tile) TerrainKind {
	if m == nil || m.tiles == nil {
		return Plain
	}
	return m.tiles[t]
}

// Set records the terrain for a single tile. Setting Plain drops the entry.
func (m *TerrainMap) Set(t Tile, k TerrainKind) {
	if m.tiles == nil {
		m.tiles = make(map[Tile]TerrainKind)
	}
	if k == Plain {
		delete(m.tiles, t)
		return
	}
	m.tiles[t] = k
}

// Load replaces the whole map with tiles. Invalid tiles are rejected before
// anything changes.
func (m *TerrainMap) Load(tiles map[Tile]TerrainKind) error {
	next := make(map[Tile]TerrainKind, len(tiles))
	for t, k := range tiles {
		if !t.Valid() {
			return fmt.Errorf("terrain tile %d out of range", t)
		}
		if k != Plain {
			next[t] = k
		}
	}
	m.tiles = next
	return nil
}

// Wipe removes every entry.
func (m *TerrainMap) Wipe() {
	m.tiles = make(map[Tile]TerrainKind)
}

// Len returns the number of non-plain tiles.
func (m *TerrainMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tiles)
}

// Count returns how many tiles hold terrain k. Plain is not countable on a
// sparse map and always reports 0.
func (m *TerrainMap) Count(k TerrainKind) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.tiles {
		if v == k {
			n++
		}
	}
	return n
}
