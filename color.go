package main

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// parseColor accepts #rgb, #rrggbb and #rrggbbaa. The leading # is optional.
// "none", "transparent" and the empty string are reported as not paintable.
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, true
}

// colorOr parses s and falls back to def when s is not a usable colour.
func colorOr(s, def string) color.NRGBA {
	if c, ok := parseColor(s); ok {
		return c
	}
	c, _ := parseColor(def)
	return c
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A)*clamp(alpha, 0, 1) + 0.5)
	return c
}

// ContrastTextColor picks black or white text for the given background. The
// weighting is the classic 0.299/0.587/0.114 luma. Input that does not parse
// as a hex colour lands on white.
func ContrastTextColor(background string) string {
	c, ok := parseColor(background)
	if !ok {
		return "#ffffff"
	}
	luminance := (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
	if luminance > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
