package dashboard

import "strings"

// sparkTicks are the eight block glyphs used for the token sparkline.
var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders samples as a fixed-width block graph, scaled to the
// sample range. Fewer samples than width left-pads with spaces so the
// graph grows rightward.
func sparkline(samples []int, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	lo, hi := samples[0], samples[0]
	for _, s := range samples {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	var b strings.Builder
	for i := len(samples); i < width; i++ {
		b.WriteByte(' ')
	}
	for _, s := range samples {
		idx := 0
		if hi > lo {
			idx = (s - lo) * (len(sparkTicks) - 1) / (hi - lo)
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

// bar renders a usage gauge of the given width, filled to percent (0-100).
func bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
