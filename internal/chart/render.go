package chart

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
)

const barWidth = 40

var shades = []rune{' ', '░', '▒', '▓', '█'}

// Text renders the chart for a terminal: horizontal bars for series charts,
// shaded cells for heatmaps.
func (s *Spec) Text() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(string(s.Type)), s.Title))
	if s.Heatmap != nil {
		s.heatmapText(&b)
		return b.String()
	}
	if len(s.Series) == 0 || len(s.Labels) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}
	data := s.Series[0].Data
	width := 0
	for _, l := range s.Labels {
		if n := utf8.RuneCountInString(l); n > width {
			width = n
		}
	}
	if width > 24 {
		width = 24
	}
	peak := 0.0
	for _, v := range data {
		if !math.IsNaN(v) && math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	for i, l := range s.Labels {
		v := math.NaN()
		if i < len(data) {
			v = data[i]
		}
		n := 0
		if peak > 0 && !math.IsNaN(v) {
			n = int(math.Round(math.Abs(v) / peak * barWidth))
		}
		b.WriteString(fmt.Sprintf("%-*s │%s %s\n", width, truncate(l, width), strings.Repeat("█", n), analysis.FormatFloat(v, 2)))
	}
	return b.String()
}

func (s *Spec) heatmapText(b *strings.Builder) {
	h := s.Heatmap
	b.WriteString(fmt.Sprintf("y: %s, x: %s, max cell: %d\n", h.YColumn, h.XColumn, h.Max))
	grid := make([][]rune, len(h.YLabels))
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", len(h.XLabels)))
	}
	for _, c := range h.Cells {
		if c.Y < len(grid) && c.X < len(grid[c.Y]) {
			grid[c.Y][c.X] = shade(c.Count, h.Max)
		}
	}
	width := 0
	for _, l := range h.YLabels {
		if n := len(l); n > width {
			width = n
		}
	}
	// Highest y bin on top.
	for i := len(grid) - 1; i >= 0; i-- {
		b.WriteString(fmt.Sprintf("%*s │%s│\n", width, h.YLabels[i], string(grid[i])))
	}
	if len(h.XLabels) > 0 {
		b.WriteString(fmt.Sprintf("%*s  %s .. %s\n", width, "", h.XLabels[0], h.XLabels[len(h.XLabels)-1]))
	}
}

func shade(count, max int) rune {
	if count == 0 || max == 0 {
		return shades[0]
	}
	i := 1 + int(float64(count)/float64(max)*float64(len(shades)-2)+0.5)
	if i >= len(shades) {
		i = len(shades) - 1
	}
	return shades[i]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
