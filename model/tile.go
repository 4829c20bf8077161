package model

// RoomSize is the width and height of a room in tiles.
const RoomSize = 50

// Tile is a row-major index into the room grid: y*RoomSize + x.
type Tile int

// TileAt returns the tile index for (x, y), or -1 when either coordinate is
// outside the room. Valid reports false for -1.
func TileAt(x, y int) Tile {
	if x < 0 || x >= RoomSize || y < 0 || y >= RoomSize {
		return -1
	}
	return Tile(y*RoomSize + x)
}

// XY returns the (x, y) position of the tile.
func (t Tile) XY() (int, int) {
	return int(t) % RoomSize, int(t) / RoomSize
}

// Valid reports whether the tile lies inside the room grid.
func (t Tile) Valid() bool {
	return t >= 0 && int(t) < RoomSize*RoomSize
}
