// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DotsStyle selects how the data modules of a QR code are drawn.
type DotsStyle string

const (
	DotsRounded       DotsStyle = "rounded"
	DotsDots          DotsStyle = "dots"
	DotsClassy        DotsStyle = "classy"
	DotsClassyRounded DotsStyle = "classy-rounded"
	DotsSquare        DotsStyle = "square"
)

// CornerSquareStyle selects how the outer ring of the three finder
// patterns is drawn.
type CornerSquareStyle string

const (
	CornerSquareExtraRounded CornerSquareStyle = "extra-rounded"
	CornerSquareDot          CornerSquareStyle = "dot"
	CornerSquareSquare       CornerSquareStyle = "square"
)

// CornerDotStyle selects how the center of the three finder patterns
// is drawn.
type CornerDotStyle string

const (
	CornerDotDot    CornerDotStyle = "dot"
	CornerDotSquare CornerDotStyle = "square"
)

// LogoType identifies which logo representation (if any) is composed
// into the center of the rendered QR code. Exactly one is active.
type LogoType string

const (
	LogoNone   LogoType = "none"
	LogoSocial LogoType = "social"
	LogoAvatar LogoType = "avatar"
)

// ValidDotsStyle reports whether s is a known dots style.
func ValidDotsStyle(s DotsStyle) bool {
	switch s {
	case DotsRounded, DotsDots, DotsClassy, DotsClassyRounded, DotsSquare:
		return true
	}
	return false
}

// ValidCornerSquareStyle reports whether s is a known corner-square style.
func ValidCornerSquareStyle(s CornerSquareStyle) bool {
	switch s {
	case CornerSquareExtraRounded, CornerSquareDot, CornerSquareSquare:
		return true
	}
	return false
}

// ValidCornerDotStyle reports whether s is a known corner-dot style.
func ValidCornerDotStyle(s CornerDotStyle) bool {
	switch s {
	case CornerDotDot, CornerDotSquare:
		return true
	}
	return false
}

// ValidLogoType reports whether t is a known logo type.
func ValidLogoType(t LogoType) bool {
	switch t {
	case LogoNone, LogoSocial, LogoAvatar:
		return true
	}
	return false
}

// QRSettings is the style/color/logo block of a QR design, stored as
// JSONB and sent over the wire as a JSON-encoded string in the
// savetobucket form. Colors are "rgba(r, g, b, a)" strings where the
// alpha channel encodes the opacity percentage (a = opacity / 100).
type QRSettings struct {
	DotsStyle                DotsStyle         `json:"dotsStyle"`
	CornerSquareStyle        CornerSquareStyle `json:"cornerSquareStyle"`
	CornerDotStyle           CornerDotStyle    `json:"cornerDotStyle"`
	ColorPrimary             string            `json:"colorPrimary"`
	ColorSecondary           string            `json:"colorSecondary"`
	ColorPrimaryDot          string            `json:"colorPrimaryDot"`
	ColorPrimaryCornerSquare string            `json:"colorPrimaryCornerSquare"`
	LogoType                 LogoType          `json:"logoType"`
	SocialIconName           string            `json:"socialIconName,omitempty"`
}

// DefaultQRSettings returns the documented defaults: rounded dots,
// extra-rounded corner square, dot corner style, black on white at full
// opacity, no logo.
func DefaultQRSettings() QRSettings {
	return QRSettings{
		DotsStyle:                DotsRounded,
		CornerSquareStyle:        CornerSquareExtraRounded,
		CornerDotStyle:           CornerDotDot,
		ColorPrimary:             "rgba(0, 0, 0, 1)",
		ColorSecondary:           "rgba(255, 255, 255, 1)",
		ColorPrimaryDot:          "rgba(0, 0, 0, 1)",
		ColorPrimaryCornerSquare: "rgba(0, 0, 0, 1)",
		LogoType:                 LogoNone,
	}
}

// Normalize fills any missing or unknown subfields with the documented
// defaults so that partially stored settings never propagate zero values.
func (s *QRSettings) Normalize() {
	def := DefaultQRSettings()
	if !ValidDotsStyle(s.DotsStyle) {
		s.DotsStyle = def.DotsStyle
	}
	if !ValidCornerSquareStyle(s.CornerSquareStyle) {
		s.CornerSquareStyle = def.CornerSquareStyle
	}
	if !ValidCornerDotStyle(s.CornerDotStyle) {
		s.CornerDotStyle = def.CornerDotStyle
	}
	if s.ColorPrimary == "" {
		s.ColorPrimary = def.ColorPrimary
	}
	if s.ColorSecondary == "" {
		s.ColorSecondary = def.ColorSecondary
	}
	if s.ColorPrimaryDot == "" {
		s.ColorPrimaryDot = s.ColorPrimary
	}
	if s.ColorPrimaryCornerSquare == "" {
		s.ColorPrimaryCornerSquare = s.ColorPrimary
	}
	if !ValidLogoType(s.LogoType) {
		s.LogoType = def.LogoType
	}
	if s.LogoType != LogoSocial {
		s.SocialIconName = ""
	}
}

// HasLogo reports whether any logo is composed into the rendered code.
func (s *QRSettings) HasLogo() bool {
	return s.LogoType == LogoSocial || s.LogoType == LogoAvatar
}

// QRCode represents a persisted QR design. The rendered PNG and the
// optional avatar are stored as bytea; when object storage is configured
// they are mirrored to the public bucket for direct serving.
type QRCode struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	Description       string     `json:"description"`
	Slug              string     `json:"slug"`
	Settings          QRSettings `json:"settings"`
	Image             []byte     `json:"-"`
	ImageContentType  string     `json:"-"`
	Avatar            []byte     `json:"-"`
	AvatarContentType *string    `json:"-"`
	ImageS3Key        *string    `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasAvatar reports whether an uploaded avatar image is stored with
// the design.
func (q *QRCode) HasAvatar() bool {
	return len(q.Avatar) > 0
}
