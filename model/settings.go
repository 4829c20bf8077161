package model

import "fmt"

// MaxRCL is the highest room control level.
const MaxRCL = 8

// Settings is the per-session UI state. It is created when a planning session
// starts and is never persisted by the core.
type Settings struct {
	RCL              int    `json:"rcl"`
	Brush            string `json:"brush,omitempty"` // selected structure kind; empty means none
	BottomDrawerOpen bool   `json:"bottomDrawerOpen"`
	Hover            Tile   `json:"hover"` // last hovered tile, -1 when the cursor is off the grid
}

// NewSettings returns the state a fresh session starts with: max level, no
// brush, nothing hovered.
func NewSettings() Settings {
	return Settings{RCL: MaxRCL, Hover: -1}
}

// SetRCL changes the current level. Levels outside [1, MaxRCL] are rejected.
func (s *Settings) SetRCL(level int) error {
	if level < 1 || level > MaxRCL {
		return fmt.Errorf("rcl %d out of range [1, %d]", level, MaxRCL)
	}
	s.RCL = level
	return nil
}
