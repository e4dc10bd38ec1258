// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexColorRe = regexp.MustCompile(`^#?([0-9A-Fa-f]{6})$`)
	rgbColorRe = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	// rgbaExtractRe pulls channels out of stored rgba(...) strings during
	// edit hydration. The alpha group is optional.
	rgbaExtractRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)
)

// ParseColorInput normalizes user color input to canonical uppercase
// "#RRGGBB". It accepts "#RRGGBB", bare "RRGGBB", and "rgb(r, g, b)"
// with channels in [0,255]. Any other input yields ok=false and the
// caller retains the prior value.
func ParseColorInput(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if m := hexColorRe.FindStringSubmatch(s); m != nil {
		return "#" + strings.ToUpper(m[1]), true
	}

	if m := rgbColorRe.FindStringSubmatch(s); m != nil {
		r, g, b, ok := parseChannels(m[1], m[2], m[3])
		if !ok {
			return "", false
		}
		return fmt.Sprintf("#%02X%02X%02X", r, g, b), true
	}

	return "", false
}

// FormatRGBA serializes a canonical "#RRGGBB" hex color and an opacity
// percentage into the stored "rgba(r, g, b, a)" shape, with the alpha
// channel carrying opacity/100.
func FormatRGBA(hex string, opacity int) string {
	r, g, b, ok := splitHex(hex)
	if !ok {
		r, g, b = 0, 0, 0
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 100 {
		opacity = 100
	}
	alpha := strconv.FormatFloat(float64(opacity)/100, 'g', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, alpha)
}

// ExtractRGBA recovers the hex color and integer opacity percentage from
// a stored "rgba(...)" or "rgb(...)" string. Plain hex input is accepted
// too (opacity 100). The percentage is rounded to the nearest integer in
// [0,100].
func ExtractRGBA(s string) (hex string, opacity int, ok bool) {
	s = strings.TrimSpace(s)

	if m := hexColorRe.FindStringSubmatch(s); m != nil {
		return "#" + strings.ToUpper(m[1]), 100, true
	}

	m := rgbaExtractRe.FindStringSubmatch(s)
	if m == nil {
		return "", 0, false
	}
	r, g, b, chOK := parseChannels(m[1], m[2], m[3])
	if !chOK {
		return "", 0, false
	}

	opacity = 100
	if m[4] != "" {
		alpha, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return "", 0, false
		}
		opacity = int(math.Round(alpha * 100))
		if opacity < 0 {
			opacity = 0
		}
		if opacity > 100 {
			opacity = 100
		}
	}

	return fmt.Sprintf("#%02X%02X%02X", r, g, b), opacity, true
}

// parseChannels converts three decimal channel strings, rejecting
// values above 255.
func parseChannels(rs, gs, bs string) (r, g, b int, ok bool) {
	r, _ = strconv.Atoi(rs)
	g, _ = strconv.Atoi(gs)
	b, _ = strconv.Atoi(bs)
	if r > 255 || g > 255 || b > 255 {
		return 0, 0, 0, false
	}
	return r, g, b, true
}

// splitHex breaks "#RRGGBB" into integer channels.
func splitHex(hex string) (r, g, b int, ok bool) {
	m := hexColorRe.FindStringSubmatch(hex)
	if m == nil {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
