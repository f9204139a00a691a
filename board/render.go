package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/bcspragu/esgea/esgea"
)

var colors = []string{"red", "blue", "green", "yellow"}

// Color is the fill color used for locations controlled by pID.
func Color(pID esgea.PlayerID) string {
	if pID < 0 {
		return "white"
	}
	return colors[int(pID)%len(colors)]
}

// Render writes a graphviz description of the board to w: one line per
// location, then one line per edge.
func (b *Board) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("graph {\n")
	for _, l := range b.locations {
		color := "white"
		if l.Control != nil {
			color = Color(*l.Control)
		}
		label := ""
		if l.PendingBonus != nil {
			label = fmt.Sprint(*l.PendingBonus)
		}
		if l.Boost {
			label += "⚡"
		}
		fmt.Fprintf(&sb, "  %d [ size=%g style=filled fillcolor=%s label=%q tooltip=%q ]\n",
			l.ID, float64(l.BaseIncome)*0.25, color, label, l.Name)
	}
	for _, e := range b.edges {
		fmt.Fprintf(&sb, "  %d -- %d;\n", e.A, e.B)
	}
	sb.WriteString("}\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	return nil
}
