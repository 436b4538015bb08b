package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/hdt/internal/report"
	"github.com/aretw0/hdt/pkg/domain"
)

// Bounds fixes the delay axis of the charts.
type Bounds struct {
	Min float64
	Max float64
}

// GenerateMermaid produces one Mermaid xychart per staircase, plotting the
// administered delay against the administration index. Charts are returned
// as fenced markdown blocks so they render in any Mermaid-aware viewer.
func GenerateMermaid(staircases []report.Summary, bounds *Bounds) string {
	var sb strings.Builder

	for i, st := range staircases {
		if len(st.Delays) == 0 {
			continue
		}
		if i > 0 {
			sb.WriteString("\n")
		}

		lo, hi := st.Delays[0], st.Delays[0]
		for _, d := range st.Delays {
			lo, hi = min(lo, d), max(hi, d)
		}
		if bounds != nil {
			lo, hi = bounds.Min, bounds.Max
		}

		values := make([]string, len(st.Delays))
		for j, d := range st.Delays {
			values[j] = domain.FormatDelay(d)
		}

		sb.WriteString("```mermaid\n")
		sb.WriteString("xychart-beta\n")
		fmt.Fprintf(&sb, "    title \"%s\"\n", sanitizeTitle(st.Name))
		fmt.Fprintf(&sb, "    x-axis \"Trial\" 1 --> %d\n", len(st.Delays))
		fmt.Fprintf(&sb, "    y-axis \"Delay (ms)\" %s --> %s\n", domain.FormatDelay(lo), domain.FormatDelay(hi))
		fmt.Fprintf(&sb, "    line [%s]\n", strings.Join(values, ", "))
		sb.WriteString("```\n")
	}

	return sb.String()
}

func sanitizeTitle(name string) string {
	return strings.ReplaceAll(name, "\"", "'")
}
