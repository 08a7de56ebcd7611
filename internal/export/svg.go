package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/overshoot/internal/dynamo"
	"github.com/san-kum/overshoot/internal/viz"
)

// Palette colours successive oscillator traces.
var Palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff6b6b", "#0088ff"}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

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
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ResultToSVG plots every oscillator of res against time on shared axes,
// one path per oscillator, with a zero line.
func ResultToSVG(res *dynamo.Result, width, height int) string {
	if res == nil || len(res.Times) < 2 || len(res.IDs) == 0 {
		return ""
	}

	t0, t1 := res.Times[0], res.Times[len(res.Times)-1]
	lo, hi := 0.0, 0.0
	for _, row := range res.Values {
		for _, v := range row {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	rangeT := t1 - t0
	if rangeT == 0 {
		rangeT = 1
	}
	rangeV := hi - lo
	if rangeV == 0 {
		rangeV = 1
	}
	lo -= rangeV * 0.1
	hi += rangeV * 0.1
	rangeV = hi - lo

	toX := func(t float64) float64 { return (t - t0) / rangeT * float64(width) }
	toY := func(v float64) float64 { return float64(height) - (v-lo)/rangeV*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, width, height, width, height, toY(0), width, toY(0))

	for i, id := range res.IDs {
		col := res.Column(id)
		fmt.Fprintf(&sb, `<path id=%q fill="none" stroke="%s" stroke-width="1.5" d="M`, id, Palette[i%len(Palette)])
		for j, v := range col {
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", toX(res.Times[j]), toY(v))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
