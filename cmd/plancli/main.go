// Command plancli prints the structure panel for a room: which brushes are
// usable at a level, their badges and any over-capacity kinds.
//
//	plancli -terrain room.txt -layout bunker.json -rcl 6 -hover 25,25
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/nstehr/roomplan/ipc"
	"github.com/nstehr/roomplan/model"
	"github.com/nstehr/roomplan/panel"
	"github.com/nstehr/roomplan/planner"
	"github.com/nstehr/roomplan/rules"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.Enable = false
	}
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "plancli:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plancli", flag.ContinueOnError)
	terrainPath := fs.String("terrain", "", "file holding the encoded room terrain")
	layoutPath := fs.String("layout", "", "JSON file mapping structure kinds to [{x, y}] positions")
	rcl := fs.Int("rcl", model.MaxRCL, "room control level")
	brush := fs.String("brush", "", "structure to mark as selected")
	hover := fs.String("hover", "", "tile under the cursor as x,y")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := planner.NewSession(rules.DefaultEngine())

	var encoded string
	if *terrainPath != "" {
		data, err := os.ReadFile(*terrainPath)
		if err != nil {
			return fmt.Errorf("read terrain: %w", err)
		}
		encoded = string(data)
	}
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			return fmt.Errorf("read layout: %w", err)
		}
		var positions map[string][]ipc.Position
		if err := json.Unmarshal(data, &positions); err != nil {
			return fmt.Errorf("parse layout: %w", err)
		}
		if err := s.LoadLayout(planner.LayoutFromPositions(positions), encoded, 0); err != nil {
			return err
		}
	} else if encoded != "" {
		if err := s.LoadTerrain(encoded, false); err != nil {
			return err
		}
	}

	if err := s.SetRCL(*rcl); err != nil {
		return err
	}
	if *brush != "" {
		if _, err := s.SelectBrush(*brush); err != nil {
			return err
		}
	}
	if *hover != "" {
		var x, y int
		if _, err := fmt.Sscanf(strings.TrimSpace(*hover), "%d,%d", &x, &y); err != nil {
			return fmt.Errorf("parse -hover %q: %w", *hover, err)
		}
		tile := model.TileAt(x, y)
		if !tile.Valid() {
			return fmt.Errorf("hover tile (%d,%d) is outside the room", x, y)
		}
		s.Hover(tile)
		occupant, _ := s.StructureAt(tile)
		fmt.Fprintf(out, "Hover (%d,%d) %s %s\n", x, y, s.TerrainAt(tile), occupant)
	}

	if err := panel.Render(out, s.Settings.RCL, s.Brushes()); err != nil {
		return err
	}
	if err := s.Audit(); err != nil {
		return err
	}
	return nil
}
