package analysis

import "strings"

// BifurcationPoint holds the steady states found at one parameter value.
type BifurcationPoint struct {
	Param   float64
	Values  []float64 // x4 of each steady state
	Classes []Stability
}

// Bifurcation arranges sweep rows by parameter value. Every value in
// values gets a point, including those without steady states.
func Bifurcation(values []float64, rows []Row) []BifurcationPoint {
	out := make([]BifurcationPoint, len(values))
	for i, v := range values {
		out[i].Param = v
	}
	j := 0
	for _, r := range rows {
		for j < len(out) && out[j].Param != r.Value {
			j++
		}
		if j == len(out) {
			break
		}
		out[j].Values = append(out[j].Values, r.X4)
		out[j].Classes = append(out[j].Classes, r.Stab8D)
	}
	return out
}

var bifurcationMarks = map[Stability]rune{
	Stable:   '●',
	Unstable: '○',
	Saddle:   '×',
}

// BifurcationToASCII plots x4 against parameter index. Stable states are
// drawn as ●, unstable as ○ and saddles as ×.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for k, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row < 0 || row >= height {
				continue
			}
			mark := '•'
			if k < len(p.Classes) {
				mark = bifurcationMarks[p.Classes[k]]
			}
			// A stable mark is never overwritten.
			if canvas[row][col] == bifurcationMarks[Stable] {
				continue
			}
			canvas[row][col] = mark
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
