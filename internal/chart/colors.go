package chart

import "strings"

var sliceColors = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0",
}

var schemes = map[string][]string{
	"default":    {"rgba(75, 192, 192, 0.6)", "rgba(255, 99, 132, 0.6)", "rgba(255, 206, 86, 0.6)"},
	"pastel":     {"rgba(255, 182, 193, 0.6)", "rgba(176, 224, 230, 0.6)", "rgba(221, 160, 221, 0.6)"},
	"dark":       {"rgba(54, 162, 235, 0.6)", "rgba(255, 99, 132, 0.6)", "rgba(255, 206, 86, 0.6)"},
	"monochrome": {"rgba(128, 128, 128, 0.6)", "rgba(160, 160, 160, 0.6)", "rgba(192, 192, 192, 0.6)"},
}

// Colors returns n slice colors, cycling the palette.
func Colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = sliceColors[i%len(sliceColors)]
	}
	return out
}

// Scheme returns the named series palette, falling back to "default".
func Scheme(name string) []string {
	if s, ok := schemes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return schemes["default"]
}

func applyScheme(series []Series, palette []string) {
	for i := range series {
		c := palette[i%len(palette)]
		series[i].BackgroundColor = []string{c}
		series[i].BorderColor = c
	}
}
