// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"cardpress/internal/models"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	return img
}

func TestRenderDefaults(t *testing.T) {
	data, err := Render(Options{Content: "https://example.com"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodePNG(t, data)
	b := img.Bounds()
	if b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Errorf("dimensions = %dx%d, want %dx%d", b.Dx(), b.Dy(), DefaultSize, DefaultSize)
	}
}

func TestRenderCustomSize(t *testing.T) {
	data, err := Render(Options{Content: "https://example.com", Size: 256})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b := decodePNG(t, data).Bounds()
	if b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("dimensions = %dx%d, want 256x256", b.Dx(), b.Dy())
	}
}

func TestRenderEmptyContent(t *testing.T) {
	if _, err := Render(Options{}); err == nil {
		t.Fatal("empty content accepted")
	}
}

func TestRenderAllStyleCombinations(t *testing.T) {
	dots := []models.DotsStyle{models.DotsRounded, models.DotsDots, models.DotsClassy, models.DotsClassyRounded, models.DotsSquare}
	squares := []models.CornerSquareStyle{models.CornerSquareExtraRounded, models.CornerSquareDot, models.CornerSquareSquare}
	cornerDots := []models.CornerDotStyle{models.CornerDotDot, models.CornerDotSquare}

	for _, d := range dots {
		for _, sq := range squares {
			for _, cd := range cornerDots {
				s := models.DefaultQRSettings()
				s.DotsStyle = d
				s.CornerSquareStyle = sq
				s.CornerDotStyle = cd
				data, err := Render(Options{Content: "https://example.com", Settings: s, Size: 128})
				if err != nil {
					t.Fatalf("Render(%s/%s/%s): %v", d, sq, cd, err)
				}
				decodePNG(t, data)
			}
		}
	}
}

func TestRenderBackgroundColor(t *testing.T) {
	s := models.DefaultQRSettings()
	s.ColorSecondary = "rgba(255, 0, 0, 1)"
	data, err := Render(Options{Content: "https://example.com", Settings: s, Size: 128})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodePNG(t, data)

	// The quiet-zone corner pixel carries the background color.
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("corner pixel = %d/%d/%d, want red background", r>>8, g>>8, b>>8)
	}
}

func TestRenderDistinctStylesDiffer(t *testing.T) {
	base := models.DefaultQRSettings()
	a, err := Render(Options{Content: "https://example.com", Settings: base, Size: 128})
	if err != nil {
		t.Fatal(err)
	}
	alt := base
	alt.DotsStyle = models.DotsSquare
	b, err := Render(Options{Content: "https://example.com", Settings: alt, Size: 128})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("dot style change produced identical output")
	}
}

func TestRenderWithLogo(t *testing.T) {
	logo := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			logo.SetNRGBA(x, y, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF})
		}
	}

	data, err := Render(Options{Content: "https://example.com", Logo: logo})
	if err != nil {
		t.Fatalf("Render with logo: %v", err)
	}
	img := decodePNG(t, data)

	// The logo is composed dead-center at full opacity. Resampling may
	// nudge channels by one.
	r, g, b, _ := img.At(DefaultSize/2, DefaultSize/2).RGBA()
	near := func(got uint32, want int) bool {
		d := int(got>>8) - want
		return d >= -1 && d <= 1
	}
	if !near(r, 0x12) || !near(g, 0x34) || !near(b, 0x56) {
		t.Errorf("center pixel = %02x/%02x/%02x, want logo color", r>>8, g>>8, b>>8)
	}
}

func TestDecodeLogo(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeLogo(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeLogo: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("decoded width = %d, want 8", img.Bounds().Dx())
	}

	if _, err := DecodeLogo([]byte("not an image")); err == nil {
		t.Error("garbage bytes decoded")
	}
}

func TestParseStoredColor(t *testing.T) {
	fallback := color.NRGBA{A: 0xFF}
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"rgba(255, 136, 0, 1)", color.NRGBA{R: 255, G: 136, B: 0, A: 255}},
		{"rgba(255, 136, 0, 0.5)", color.NRGBA{R: 255, G: 136, B: 0, A: 128}},
		{"rgb(0, 0, 0)", color.NRGBA{A: 255}},
		{"#FF8800", color.NRGBA{R: 255, G: 136, B: 0, A: 255}},
		{"garbage", fallback},
		{"", fallback},
	}
	for _, tt := range tests {
		if got := parseStoredColor(tt.in, fallback); got != tt.want {
			t.Errorf("parseStoredColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
