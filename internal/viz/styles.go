package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Selected  lipgloss.Style
	Subtle    lipgloss.Style
	Running   lipgloss.Style
	Idle      lipgloss.Style
	Graph     lipgloss.Style
	Panel     lipgloss.Style
	Positive  lipgloss.Style
	Negative  lipgloss.Style
	HelpStyle lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:     lipgloss.NewStyle().Foreground(t.Text),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Subtle:    lipgloss.NewStyle().Foreground(t.Muted),
		Running:   lipgloss.NewStyle().Bold(true).Foreground(t.Positive),
		Idle:      lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Graph:     lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted).Padding(0, 1),
		Positive:  lipgloss.NewStyle().Foreground(t.Positive),
		Negative:  lipgloss.NewStyle().Foreground(t.Negative),
		HelpStyle: lipgloss.NewStyle().MarginTop(1),
	}
}

// Gauge draws v in [-scale, scale] as a bar growing left or right from a
// centre mark. Values outside the range are pinned to the ends.
func (s Styles) Gauge(v, scale float64, width int) string {
	half := width / 2
	if half < 1 {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}
	n := int(math.Round(math.Min(math.Abs(v)/scale, 1) * float64(half)))

	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if v < 0 {
		left = strings.Repeat(" ", half-n) + s.Negative.Render(strings.Repeat("█", n))
	} else if v > 0 {
		right = s.Positive.Render(strings.Repeat("█", n)) + strings.Repeat(" ", half-n)
	}
	return left + s.Subtle.Render("│") + right
}

// Sparkline renders the last width values with eight-level block glyphs.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}

// GradientText colours each rune of text on a linear ramp between two hex
// colours.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(start))
	er, eg, eb := parseHex(string(end))

	var b strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		bl := int(float64(sb) + t*float64(eb-sb))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(r, g, bl))).Render(string(c)))
	}
	return b.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
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
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(v, 255))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
