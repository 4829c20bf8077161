package panel

import (
	"fmt"
	"io"

	"github.com/gookit/color"
)

var (
	colorName     = color.Style{color.FgWhite}
	colorSelected = color.Style{color.FgGreen, color.OpBold}
	colorDisabled = color.Style{color.FgGray}
	colorLocked   = color.Style{color.FgYellow}
	colorError    = color.Style{color.FgRed, color.OpBold}
)

// Render writes the brushes as an aligned table for terminals.
func Render(w io.Writer, rcl int, brushes []Brush) error {
	if _, err := fmt.Fprintf(w, "Controller Level %d\n", rcl); err != nil {
		return err
	}
	for _, b := range brushes {
		marker := " "
		nameStyle := colorName
		switch {
		case b.Selected:
			marker = ">"
			nameStyle = colorSelected
		case b.Disabled:
			nameStyle = colorDisabled
		}

		badgeStyle := colorName
		switch {
		case b.Error:
			badgeStyle = colorError
		case b.Locked:
			badgeStyle = colorLocked
		case b.Disabled:
			badgeStyle = colorDisabled
		}

		name := nameStyle.Sprintf("%-12s", b.Name)
		badge := badgeStyle.Sprintf("%-12s", b.Label)
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n", marker, name, badge, colorDisabled.Sprint(b.Tooltip)); err != nil {
			return err
		}
	}
	return nil
}
