package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/bistab/internal/analysis"
)

// StabilityCell pads before styling so ANSI codes do not break alignment.
func StabilityCell(s analysis.Stability, width int) string {
	name := s.String()
	if pad := width - len(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}
	return StabilityStyle[s].Style.Render(name)
}

// StabWidth fits the longest class name.
const StabWidth = 18

// ResultTable lists steady states with both classifications. Conflicting
// rows are flagged with '!'.
func ResultTable(results []*analysis.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-3s %12s %12s  %-*s %-*s %s\n", "#", "x2", "x4", StabWidth, "2D", StabWidth, "8D", "max Re λ8")
	for i, r := range results {
		flag := " "
		if r.Conflict {
			flag = "!"
		}
		fmt.Fprintf(&sb, "%-3d %12.4f %12.4f  %s %s %+.3e %s\n",
			i+1, r.State.X2, r.State.X4,
			StabilityCell(r.Stab2, StabWidth), StabilityCell(r.Stab8, StabWidth),
			analysis.MaxReal(r.Eig8), flag)
	}
	return sb.String()
}

// RowTable lists sweep rows.
func RowTable(rows []analysis.Row) string {
	var sb strings.Builder
	if len(rows) == 0 {
		return ""
	}
	fmt.Fprintf(&sb, "%12s %12s %12s  %-*s %-*s\n", rows[0].Param, "x2", "x4", StabWidth, "2D", StabWidth, "8D")
	for _, r := range rows {
		flag := ""
		if r.Conflict {
			flag = " !"
		}
		fmt.Fprintf(&sb, "%12.4g %12.4f %12.4f  %s %s%s\n",
			r.Value, r.X2, r.X4, StabilityCell(r.Stab2D, StabWidth), StabilityCell(r.Stab8D, StabWidth), flag)
	}
	return sb.String()
}

// Legend shows the mark and colour of every class.
func Legend() string {
	parts := make([]string, 0, len(StabilityStyle))
	for _, s := range analysis.Stabilities() {
		a := StabilityStyle[s]
		parts = append(parts, a.Style.Render(string(a.Mark)+" "+s.String()))
	}
	return strings.Join(parts, "  ")
}

// Metric renders one "label value" line.
func Metric(label string, value any) string {
	return MetricLabel.Render(label) + MetricValue.Render(fmt.Sprint(value))
}
