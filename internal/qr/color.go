// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package qr

import (
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// storedColorRe matches the "rgba(r, g, b, a)" / "rgb(r, g, b)" strings
// the settings block stores. The alpha channel carries opacity/100.
var storedColorRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)

// hexRe matches canonical hex colors with or without the leading '#'.
var hexRe = regexp.MustCompile(`^#?([0-9A-Fa-f]{6})$`)

// parseStoredColor converts a stored settings color into an NRGBA value,
// falling back to the given default when the string is malformed.
func parseStoredColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimSpace(s)

	if m := hexRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 32)
		if err != nil {
			return fallback
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
	}

	m := storedColorRe.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	if r > 255 || g > 255 || b > 255 {
		return fallback
	}
	a := 255
	if m[4] != "" {
		alpha, err := strconv.ParseFloat(m[4], 64)
		if err != nil || alpha < 0 || alpha > 1 {
			return fallback
		}
		a = int(math.Round(alpha * 255))
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}
