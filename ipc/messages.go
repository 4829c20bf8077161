package ipc

// Request types sent by a UI shell.
const (
	TypeHello          = "hello"
	TypeSetRCL         = "set_rcl"
	TypeSelectBrush    = "select_brush"
	TypeHover          = "hover"
	TypePlace          = "place"
	TypeRemove         = "remove"
	TypeWipeStructures = "wipe_structures"
	TypeWipeTerrain    = "wipe_terrain"
	TypeSetTerrain     = "set_terrain"
	TypeLoadTerrain    = "load_terrain"
	TypeLoadLayout     = "load_layout"
	TypeToggleDrawer   = "toggle_drawer"
	TypeGetPanel       = "get_panel"
)

// Reply types sent by the planner.
const (
	TypeAck   = "ack"
	TypeError = "error"
	TypePanel = "panel"
)

type HelloMessage struct {
	Client string `json:"client"`
	RCL    int    `json:"rcl,omitempty"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}

// ErrorMessage reports a rejected request. Code is a stable machine-readable
// reason; Reasons lists every failed placement condition when there are
// several.
type ErrorMessage struct {
	Request string   `json:"request"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

type SetRCLMessage struct {
	RCL int `json:"rcl"`
}

type SelectBrushMessage struct {
	Brush string `json:"brush"` // kind or display name; empty clears the brush
}

// TileMessage addresses one tile. Kind is only read by place and overrides
// the selected brush.
type TileMessage struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind,omitempty"`
}

// SetTerrainMessage paints one tile. Terrain is "plain", "swamp" or "wall".
type SetTerrainMessage struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Terrain string `json:"terrain"`
}

// LoadTerrainMessage carries the encoded room terrain: one digit per tile,
// row-major, bit 1 wall, bit 2 swamp.
type LoadTerrainMessage struct {
	Terrain        string `json:"terrain"`
	KeepStructures bool   `json:"keepStructures,omitempty"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LoadLayoutMessage replaces the room with a prepared layout.
type LoadLayoutMessage struct {
	RCL        int                   `json:"rcl,omitempty"`
	Terrain    string                `json:"terrain,omitempty"`
	Structures map[string][]Position `json:"structures"`
}
