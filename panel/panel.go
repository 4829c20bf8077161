package panel

import (
	"fmt"

	"github.com/leonelquinteros/gotext"

	"github.com/nstehr/roomplan/model"
	"github.com/nstehr/roomplan/rules"
)

// Brush is the display state of one structure kind.
type Brush struct {
	Kind          string        `json:"key"`
	Name          string        `json:"name"`
	Image         string        `json:"image"`
	Total         int           `json:"total"`
	Placed        int           `json:"placed"`
	Remaining     int           `json:"remaining"` // total - placed; negative when over capacity
	Allowed       int           `json:"allowed"`   // allowance at the current level
	RequiredLevel int           `json:"requiredLevel"`
	Disabled      bool          `json:"disabled"`
	Error         bool          `json:"error"`  // more placed than the total permits
	Locked        bool          `json:"locked"` // level too low, never set together with Error
	Selected      bool          `json:"selected"`
	Label         string        `json:"label"`
	Tooltip       string        `json:"tooltip"`
	Verdict       rules.Verdict `json:"verdict"`
}

// Input is everything the panel reads from a session.
type Input struct {
	Settings model.Settings
	Counts   map[string]int
	Terrain  model.TerrainKind // terrain under the hovered tile; Plain when none
}

// Brushes returns one Brush per catalog entry, in catalog order.
func Brushes(engine *rules.Engine, in Input) []Brush {
	entries := engine.Catalog().Entries()
	out := make([]Brush, 0, len(entries))
	rcl := in.Settings.RCL

	for _, e := range entries {
		placed := in.Counts[e.Kind]
		v := engine.Check(e.Kind, rcl, placed, in.Terrain)

		b := Brush{
			Kind:          e.Kind,
			Name:          e.Name,
			Image:         e.Image,
			Total:         e.Total,
			Placed:        placed,
			Remaining:     e.Total - placed,
			Allowed:       e.Allowed(rcl),
			RequiredLevel: e.RequiredLevel,
			Disabled:      !v.Allowed(),
			Error:         e.Total < placed,
			Selected:      in.Settings.Brush == e.Kind,
			Verdict:       v,
		}
		b.Locked = !b.Error && v.LevelLocked
		b.Tooltip = gotext.Get("%d Remaining", b.Remaining)
		if b.Locked {
			b.Label = gotext.Get("RCL %d", e.RequiredLevel)
		} else {
			b.Label = fmt.Sprintf("%d / %d", placed, e.Total)
		}
		out = append(out, b)
	}
	return out
}

// LevelOptions lists the levels a level selector offers.
func LevelOptions() []int {
	out := make([]int, model.MaxRCL)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// SetLocale loads translations for panel strings from dir (gettext layout:
// dir/<lang>/LC_MESSAGES/default.po). Untranslated strings fall back to the
// English source text.
func SetLocale(dir, lang string) {
	gotext.Configure(dir, lang, "default")
}
