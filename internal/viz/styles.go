package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/bistab/internal/analysis"
)

// StabilityAttrs is how one stability class is displayed.
type StabilityAttrs struct {
	Color lipgloss.Color
	Mark  rune
	Style lipgloss.Style
}

var (
	// StabilityStyle covers every value of analysis.Stabilities().
	StabilityStyle map[analysis.Stability]StabilityAttrs

	Panel lipgloss.Style

	HeaderStyle lipgloss.Style

	Subtle lipgloss.Style

	MetricLabel lipgloss.Style

	MetricValue lipgloss.Style

	KeyHint lipgloss.Style

	// Sparkline bar colors
	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	styles := map[analysis.Stability]StabilityAttrs{
		analysis.Stable:   {Color: t.Success, Mark: '●'},
		analysis.Unstable: {Color: t.Error, Mark: '○'},
		analysis.Saddle:   {Color: t.Warning, Mark: '×'},
	}
	for s, a := range styles {
		a.Style = lipgloss.NewStyle().Bold(true).Foreground(a.Color)
		styles[s] = a
	}
	if err := CheckStabilityStyle(styles); err != nil {
		panic(err)
	}
	StabilityStyle = styles

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Muted)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(14)
	MetricValue = lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	SparkHigh = lipgloss.NewStyle().Foreground(t.Success)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Error)
}

// CheckStabilityStyle reports the first stability class missing from m.
func CheckStabilityStyle(m map[analysis.Stability]StabilityAttrs) error {
	for _, s := range analysis.Stabilities() {
		if _, ok := m[s]; !ok {
			return fmt.Errorf("viz: no display style for stability %q", s)
		}
	}
	return nil
}

// StabilityLabel renders the class name in its colour.
func StabilityLabel(s analysis.Stability) string {
	return StabilityStyle[s].Style.Render(s.String())
}

// StabilityHex is the class colour as "#rrggbb".
func StabilityHex(s analysis.Stability) string {
	return string(StabilityStyle[s].Color)
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a progress bar coloured by completion.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rng := max - min
	if rng == 0 {
		rng = 1
	}

	// Sample to fit width
	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		norm := (v - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}

		c := chars[idx]
		if norm > 0.7 {
			result.WriteString(SparkHigh.Render(string(c)))
		} else if norm > 0.3 {
			result.WriteString(SparkMid.Render(string(c)))
		} else {
			result.WriteString(SparkLow.Render(string(c)))
		}
	}

	return result.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}

// HexRGB parses "#rrggbb". Malformed input is white.
func HexRGB(hex string) (r, g, b uint8) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) uint8 {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return uint8(val)
}
