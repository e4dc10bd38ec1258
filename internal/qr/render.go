// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package qr renders styled QR codes: the module matrix comes from
// skip2/go-qrcode, the visual treatment (dot shapes, finder-pattern
// styles, per-channel colors with opacity, centered logo composition)
// is drawn module by module with fogleman/gg.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	qrcode "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp" // register WebP decoder

	"cardpress/internal/models"
)

const (
	// DefaultSize is the output image edge in pixels.
	DefaultSize = 512

	// quietModules is the quiet-zone border skip2 includes in Bitmap().
	quietModules = 4

	// finderModules is the edge of a finder pattern in modules.
	finderModules = 7

	// logoScale is the logo edge relative to the output size.
	logoScale = 0.22
)

// Options describes one render: the encoded content, the visual
// settings block, and an optional pre-decoded logo image.
type Options struct {
	Content  string
	Settings models.QRSettings
	Size     int
	Logo     image.Image
}

// Render produces the styled QR code as PNG bytes.
func Render(opts Options) ([]byte, error) {
	if opts.Content == "" {
		return nil, fmt.Errorf("render qr: empty content")
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	settings := opts.Settings
	settings.Normalize()

	// A centered logo eats modules, so raise the error correction level.
	level := qrcode.Medium
	if opts.Logo != nil {
		level = qrcode.High
	}

	code, err := qrcode.New(opts.Content, level)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	matrix := code.Bitmap()
	total := len(matrix)

	primary := parseStoredColor(settings.ColorPrimary, color.NRGBA{A: 0xFF})
	secondary := parseStoredColor(settings.ColorSecondary, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	dotColor := parseStoredColor(settings.ColorPrimaryDot, primary)
	cornerColor := parseStoredColor(settings.ColorPrimaryCornerSquare, primary)

	ms := float64(size) / float64(total)

	dc := gg.NewContext(size, size)
	dc.SetColor(secondary)
	dc.Clear()

	// Knockout zone for the logo: modules whose center falls inside the
	// circle are skipped so the composition stays readable.
	knockout := 0.0
	center := float64(size) / 2
	if opts.Logo != nil {
		knockout = float64(size)*logoScale/2 + ms
	}

	dc.SetColor(primary)
	for y := 0; y < total; y++ {
		for x := 0; x < total; x++ {
			if !matrix[y][x] {
				continue
			}
			if inFinder(x, y, total) {
				continue
			}
			px := float64(x) * ms
			py := float64(y) * ms
			if knockout > 0 {
				dx := px + ms/2 - center
				dy := py + ms/2 - center
				if math.Sqrt(dx*dx+dy*dy) < knockout {
					continue
				}
			}
			drawModule(dc, settings.DotsStyle, px, py, ms)
		}
	}

	// The three finder patterns get their own styles and colors.
	n := total - 2*quietModules
	for _, pos := range [][2]int{
		{quietModules, quietModules},
		{quietModules + n - finderModules, quietModules},
		{quietModules, quietModules + n - finderModules},
	} {
		drawFinder(dc, settings, cornerColor, dotColor, secondary,
			float64(pos[0])*ms, float64(pos[1])*ms, ms)
	}

	if opts.Logo != nil {
		drawLogo(dc, opts.Logo, secondary, size)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("render qr: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeLogo decodes avatar or icon bytes into an image. PNG, JPEG,
// GIF, and WebP are supported.
func DecodeLogo(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}

// inFinder reports whether the module at (x, y) belongs to a finder
// pattern region, which is drawn separately.
func inFinder(x, y, total int) bool {
	n := total - 2*quietModules
	mx := x - quietModules
	my := y - quietModules
	if mx < 0 || my < 0 || mx >= n || my >= n {
		return false
	}
	topLeft := mx < finderModules && my < finderModules
	topRight := mx >= n-finderModules && my < finderModules
	bottomLeft := mx < finderModules && my >= n-finderModules
	return topLeft || topRight || bottomLeft
}

// drawModule draws one data module at (px, py) with edge ms in the
// already-set context color.
func drawModule(dc *gg.Context, style models.DotsStyle, px, py, ms float64) {
	switch style {
	case models.DotsDots:
		dc.DrawCircle(px+ms/2, py+ms/2, ms/2*0.9)
	case models.DotsRounded:
		dc.DrawRoundedRectangle(px, py, ms, ms, ms*0.35)
	case models.DotsClassy:
		drawClassyModule(dc, px, py, ms, ms/2, ms*0.05)
	case models.DotsClassyRounded:
		drawClassyModule(dc, px, py, ms, ms/2, ms*0.3)
	default: // square
		dc.DrawRectangle(px, py, ms, ms)
	}
	dc.Fill()
}

// drawClassyModule draws a module with the top-left and bottom-right
// corners rounded by rMain and the other two by rMinor.
func drawClassyModule(dc *gg.Context, x, y, ms, rMain, rMinor float64) {
	x2 := x + ms
	y2 := y + ms

	dc.NewSubPath()
	dc.MoveTo(x+rMain, y)
	dc.LineTo(x2-rMinor, y)
	dc.QuadraticTo(x2, y, x2, y+rMinor)
	dc.LineTo(x2, y2-rMain)
	dc.QuadraticTo(x2, y2, x2-rMain, y2)
	dc.LineTo(x+rMinor, y2)
	dc.QuadraticTo(x, y2, x, y2-rMinor)
	dc.LineTo(x, y+rMain)
	dc.QuadraticTo(x, y, x+rMain, y)
	dc.ClosePath()
}

// drawFinder draws one finder pattern: a 7x7 outer ring in the corner
// square style and color, and a 3x3 center in the corner dot style and
// color. The ring hole is cleared with the background color.
func drawFinder(dc *gg.Context, s models.QRSettings, ring, dot, background color.NRGBA, px, py, ms float64) {
	outer := finderModules * ms
	inner := 5 * ms
	core := 3 * ms

	dc.SetColor(ring)
	switch s.CornerSquareStyle {
	case models.CornerSquareDot:
		dc.DrawCircle(px+outer/2, py+outer/2, outer/2)
		dc.Fill()
		dc.SetColor(background)
		dc.DrawCircle(px+outer/2, py+outer/2, inner/2)
		dc.Fill()
	case models.CornerSquareExtraRounded:
		dc.DrawRoundedRectangle(px, py, outer, outer, outer*0.3)
		dc.Fill()
		dc.SetColor(background)
		dc.DrawRoundedRectangle(px+ms, py+ms, inner, inner, inner*0.3)
		dc.Fill()
	default: // square
		dc.DrawRectangle(px, py, outer, outer)
		dc.Fill()
		dc.SetColor(background)
		dc.DrawRectangle(px+ms, py+ms, inner, inner)
		dc.Fill()
	}

	dc.SetColor(dot)
	if s.CornerDotStyle == models.CornerDotDot {
		dc.DrawCircle(px+outer/2, py+outer/2, core/2)
	} else {
		dc.DrawRectangle(px+2*ms, py+2*ms, core, core)
	}
	dc.Fill()
}

// drawLogo composes the resized, circle-masked logo over the center
// with a background disc so the modules never touch it.
func drawLogo(dc *gg.Context, logo image.Image, background color.NRGBA, size int) {
	logoSize := int(float64(size) * logoScale)
	resized := resize.Resize(uint(logoSize), uint(logoSize), logo, resize.Lanczos3)

	cx := float64(size) / 2
	cy := float64(size) / 2
	radius := float64(logoSize) / 2

	// Opaque backdrop disc, slightly larger than the logo.
	backdrop := background
	backdrop.A = 0xFF
	dc.SetColor(backdrop)
	dc.DrawCircle(cx, cy, radius+float64(logoSize)*0.08)
	dc.Fill()

	dc.Push()
	dc.DrawCircle(cx, cy, radius)
	dc.Clip()
	dc.DrawImageAnchored(resized, size/2, size/2, 0.5, 0.5)
	dc.Pop()
}
