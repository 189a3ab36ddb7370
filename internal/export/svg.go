package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/viz"
)

const svgBackground = "#0a0a0a"

func svgHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground)
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, int(float64(canvas.Width)*scale*2), int(float64(canvas.Height)*scale*4))
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// frame maps data to pixels with a 10% margin on each side. Log axes
// work on log10 of the data.
type frame struct {
	minX, maxX, minY, maxY float64
	logX, logY             bool
	width, height          int
}

func newFrame(xs, ys []float64, logX, logY bool, width, height int) (frame, bool) {
	f := frame{logX: logX, logY: logY, width: width, height: height}
	first := true
	for i := range xs {
		x, y, ok := f.transform(xs[i], ys[i])
		if !ok {
			continue
		}
		if first {
			f.minX, f.maxX, f.minY, f.maxY = x, x, y, y
			first = false
			continue
		}
		f.minX, f.maxX = math.Min(f.minX, x), math.Max(f.maxX, x)
		f.minY, f.maxY = math.Min(f.minY, y), math.Max(f.maxY, y)
	}
	if first {
		return f, false
	}
	rangeX, rangeY := f.maxX-f.minX, f.maxY-f.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	f.minX -= rangeX * 0.1
	f.maxX += rangeX * 0.1
	f.minY -= rangeY * 0.1
	f.maxY += rangeY * 0.1
	return f, true
}

func (f frame) transform(x, y float64) (float64, float64, bool) {
	if f.logX {
		if x <= 0 {
			return 0, 0, false
		}
		x = math.Log10(x)
	}
	if f.logY {
		if y <= 0 {
			return 0, 0, false
		}
		y = math.Log10(y)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	return x, y, true
}

func (f frame) pixel(x, y float64) (float64, float64, bool) {
	x, y, ok := f.transform(x, y)
	if !ok {
		return 0, 0, false
	}
	px := (x - f.minX) / (f.maxX - f.minX) * float64(f.width)
	py := float64(f.height) - (y-f.minY)/(f.maxY-f.minY)*float64(f.height)
	return px, py, true
}

// CurveToSVG draws ys against xs as a polyline. Points that cannot be
// placed (NaN, or non-positive on a log axis) break the line.
func CurveToSVG(xs, ys []float64, logX bool, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}
	f, ok := newFrame(xs, ys, logX, false, width, height)
	if !ok {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, width, height)
	if f.minY < 0 && f.maxY > 0 {
		y0 := float64(height) - (0-f.minY)/(f.maxY-f.minY)*float64(height)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444466\"/>\n", y0, width, y0)
	}
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", strokeColor)
	pen := false
	for i := range xs {
		px, py, ok := f.pixel(xs[i], ys[i])
		if !ok {
			pen = false
			continue
		}
		if pen {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " M%.1f,%.1f", px, py)
			pen = true
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// BifurcationToSVG plots the x4 value of every steady state against the
// parameter, one dot per state coloured by its full-model class.
func BifurcationToSVG(data []analysis.BifurcationPoint, logX bool, width, height int) string {
	var xs, ys []float64
	for _, p := range data {
		for _, v := range p.Values {
			xs = append(xs, p.Param)
			ys = append(ys, v)
		}
	}
	f, ok := newFrame(xs, ys, logX, false, width, height)
	if !ok {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, width, height)
	for _, p := range data {
		for k, v := range p.Values {
			px, py, ok := f.pixel(p.Param, v)
			if !ok {
				continue
			}
			color := "#ffffff"
			if k < len(p.Classes) {
				color = viz.StabilityHex(p.Classes[k])
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", px, py, color)
		}
	}
	sb.WriteString(svgLegend(width))
	sb.WriteString("</svg>")
	return sb.String()
}

func svgLegend(width int) string {
	var sb strings.Builder
	y := 16
	for _, s := range analysis.Stabilities() {
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"4\" fill=\"%s\"/>", width-150, y-4, viz.StabilityHex(s))
		fmt.Fprintf(&sb, "<text x=\"%d\" y=\"%d\" fill=\"#cccccc\" font-size=\"11\" font-family=\"monospace\">%s</text>\n", width-140, y, s)
		y += 16
	}
	return sb.String()
}

// SpectrumToSVG plots eigenvalues in the complex plane: the planar ones as
// hollow circles, the full-model ones filled. The imaginary axis and the
// ±tol band around it are drawn for reference.
func SpectrumToSVG(eig2, eig8 []complex128, tol float64, width, height int) string {
	all := append(append([]complex128(nil), eig2...), eig8...)
	if len(all) == 0 {
		return ""
	}
	xs := make([]float64, 0, len(all)+2)
	ys := make([]float64, 0, len(all)+2)
	for _, e := range all {
		xs = append(xs, real(e))
		ys = append(ys, imag(e))
	}
	xs, ys = append(xs, 0, 0), append(ys, 0, 0)

	f, ok := newFrame(xs, ys, false, false, width, height)
	if !ok {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, width, height)
	lo, _, _ := f.pixel(-tol, 0)
	hi, _, _ := f.pixel(tol, 0)
	fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"0\" width=\"%.1f\" height=\"%d\" fill=\"#222233\"/>\n", lo, math.Max(hi-lo, 1), height)
	zx, zy, _ := f.pixel(0, 0)
	fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"0\" x2=\"%.1f\" y2=\"%d\" stroke=\"#666688\"/>\n", zx, zx, height)
	fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#666688\"/>\n", zy, width, zy)

	for _, e := range eig8 {
		px, py, _ := f.pixel(real(e), imag(e))
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"#00ccff\"/>\n", px, py)
	}
	for _, e := range eig2 {
		px, py, _ := f.pixel(real(e), imag(e))
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"6\" fill=\"none\" stroke=\"#ff00ff\" stroke-width=\"1.5\"/>\n", px, py)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
