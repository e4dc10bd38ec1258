// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package designer implements the client-side state manager for the QR
// code designer: an owned, mutable DesignConfiguration that is validated
// locally, round-tripped through the rendering API for previews, and
// persisted with an explicit save. No module-level state is kept, so
// multiple designer instances can coexist.
package designer

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"cardpress/internal/models"
)

// Field identifiers for SetField. Data-step fields only trigger a
// preview on an explicit step advance; all others schedule a debounced
// regenerate.
type Field string

const (
	FieldName                     Field = "name"
	FieldURL                      Field = "url"
	FieldDescription              Field = "description"
	FieldDotsStyle                Field = "dotsStyle"
	FieldCornerSquareStyle        Field = "cornerSquareStyle"
	FieldCornerDotStyle           Field = "cornerDotStyle"
	FieldColorPrimary             Field = "colorPrimary"
	FieldColorSecondary           Field = "colorSecondary"
	FieldColorPrimaryOpacity      Field = "colorPrimaryOpacity"
	FieldColorSecondaryOpacity    Field = "colorSecondaryOpacity"
	FieldColorPrimaryDot          Field = "colorPrimaryDot"
	FieldColorPrimaryCornerSquare Field = "colorPrimaryCornerSquare"
)

// Step is the configuration step currently expanded in the designer.
type Step int

const (
	StepData Step = iota
	StepStyle
	StepColor
	StepLogo
)

// Validation limits for designer identity fields.
const (
	maxNameLen        = 150
	maxDescriptionLen = 500

	// MaxAvatarBytes caps uploaded avatar images at 5 MB.
	MaxAvatarBytes = 5 << 20
)

// DesignConfiguration is the editable description of one QR code's
// visual styling plus its destination URL and metadata. Colors are held
// as canonical uppercase "#RRGGBB" with separate opacity percentages;
// the rgba(...) wire shape is produced only at serialization time.
type DesignConfiguration struct {
	Name        string
	URL         string
	Description string

	DotsStyle         models.DotsStyle
	CornerSquareStyle models.CornerSquareStyle
	CornerDotStyle    models.CornerDotStyle

	ColorPrimary          string
	ColorPrimaryOpacity   int
	ColorSecondary        string
	ColorSecondaryOpacity int

	// Override colors track ColorPrimary until explicitly customized.
	// The flags distinguish "never customized" from "customized to the
	// same value as primary".
	ColorPrimaryDot                    string
	ColorPrimaryDotCustomized          bool
	ColorPrimaryCornerSquare           string
	ColorPrimaryCornerSquareCustomized bool

	LogoType          models.LogoType
	SocialIconName    string
	AvatarData        []byte
	AvatarContentType string

	// EditingID is set when the configuration was hydrated from a
	// persisted record; saves then route as updates.
	EditingID string

	CurrentStep Step
}

// NewDesignConfiguration returns a configuration with the documented
// defaults: rounded dots, extra-rounded corner square, dot corner style,
// black on white at full opacity, no logo.
func NewDesignConfiguration() *DesignConfiguration {
	c := &DesignConfiguration{}
	c.Reset()
	return c
}

// Reset restores the blank default shape, discarding identity, styling,
// logo payloads, and any edit-mode association.
func (c *DesignConfiguration) Reset() {
	*c = DesignConfiguration{
		DotsStyle:                models.DotsRounded,
		CornerSquareStyle:        models.CornerSquareExtraRounded,
		CornerDotStyle:           models.CornerDotDot,
		ColorPrimary:             "#000000",
		ColorPrimaryOpacity:      100,
		ColorSecondary:           "#FFFFFF",
		ColorSecondaryOpacity:    100,
		ColorPrimaryDot:          "#000000",
		ColorPrimaryCornerSquare: "#000000",
		LogoType:                 models.LogoNone,
		CurrentStep:              StepData,
	}
}

// CanRender reports whether a preview or save request is valid: both
// name and url must be non-empty.
func (c *DesignConfiguration) CanRender() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.URL) != ""
}

// IsEditMode reports whether the configuration was hydrated from a
// persisted record.
func (c *DesignConfiguration) IsEditMode() bool {
	return c.EditingID != ""
}

// SetField updates one configuration attribute after validating the
// input. Invalid input is rejected with a ValidationError and the field
// keeps its last valid value.
func (c *DesignConfiguration) SetField(field Field, value string) error {
	switch field {
	case FieldName:
		if utf8.RuneCountInString(value) > maxNameLen {
			return &ValidationError{Field: field, Reason: "name exceeds 150 characters"}
		}
		c.Name = value

	case FieldURL:
		if value != "" && !validURL(value) {
			return &ValidationError{Field: field, Reason: "not a valid URL"}
		}
		c.URL = value

	case FieldDescription:
		if utf8.RuneCountInString(value) > maxDescriptionLen {
			return &ValidationError{Field: field, Reason: "description exceeds 500 characters"}
		}
		c.Description = value

	case FieldDotsStyle:
		s := models.DotsStyle(value)
		if !models.ValidDotsStyle(s) {
			return &ValidationError{Field: field, Reason: "unknown dots style"}
		}
		c.DotsStyle = s

	case FieldCornerSquareStyle:
		s := models.CornerSquareStyle(value)
		if !models.ValidCornerSquareStyle(s) {
			return &ValidationError{Field: field, Reason: "unknown corner square style"}
		}
		c.CornerSquareStyle = s

	case FieldCornerDotStyle:
		s := models.CornerDotStyle(value)
		if !models.ValidCornerDotStyle(s) {
			return &ValidationError{Field: field, Reason: "unknown corner dot style"}
		}
		c.CornerDotStyle = s

	case FieldColorPrimary:
		hex, ok := ParseColorInput(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "not a valid color"}
		}
		c.ColorPrimary = hex
		// Overrides follow primary until explicitly diverged.
		if !c.ColorPrimaryDotCustomized {
			c.ColorPrimaryDot = hex
		}
		if !c.ColorPrimaryCornerSquareCustomized {
			c.ColorPrimaryCornerSquare = hex
		}

	case FieldColorSecondary:
		hex, ok := ParseColorInput(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "not a valid color"}
		}
		c.ColorSecondary = hex

	case FieldColorPrimaryDot:
		hex, ok := ParseColorInput(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "not a valid color"}
		}
		c.ColorPrimaryDot = hex
		c.ColorPrimaryDotCustomized = true

	case FieldColorPrimaryCornerSquare:
		hex, ok := ParseColorInput(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "not a valid color"}
		}
		c.ColorPrimaryCornerSquare = hex
		c.ColorPrimaryCornerSquareCustomized = true

	case FieldColorPrimaryOpacity:
		p, ok := parseOpacity(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "opacity must be an integer in [0,100]"}
		}
		c.ColorPrimaryOpacity = p

	case FieldColorSecondaryOpacity:
		p, ok := parseOpacity(value)
		if !ok {
			return &ValidationError{Field: field, Reason: "opacity must be an integer in [0,100]"}
		}
		c.ColorSecondaryOpacity = p

	default:
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
	return nil
}

// RemoveLogo clears every logo representation.
func (c *DesignConfiguration) RemoveLogo() {
	c.LogoType = models.LogoNone
	c.SocialIconName = ""
	c.AvatarData = nil
	c.AvatarContentType = ""
}

// SelectSocialIcon activates the social logo tab with the named catalog
// icon, clearing any uploaded avatar.
func (c *DesignConfiguration) SelectSocialIcon(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "socialIconName", Reason: "icon name is required"}
	}
	c.LogoType = models.LogoSocial
	c.SocialIconName = name
	c.AvatarData = nil
	c.AvatarContentType = ""
	return nil
}

// UploadAvatar activates the avatar logo tab with the supplied image
// bytes, clearing any selected social icon. Files over 5 MB or with a
// non-image content type are rejected locally with no network call.
func (c *DesignConfiguration) UploadAvatar(data []byte) error {
	if len(data) == 0 {
		return &ValidationError{Field: "avatar", Reason: "empty file"}
	}
	if len(data) > MaxAvatarBytes {
		return &ValidationError{Field: "avatar", Reason: "file exceeds 5 MB"}
	}
	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{Field: "avatar", Reason: "file is not an image"}
	}
	c.LogoType = models.LogoAvatar
	c.AvatarData = data
	c.AvatarContentType = contentType
	c.SocialIconName = ""
	return nil
}

// Settings serializes the style/color/logo block into the wire shape,
// folding the opacity percentages into rgba alpha channels.
func (c *DesignConfiguration) Settings() models.QRSettings {
	return models.QRSettings{
		DotsStyle:                c.DotsStyle,
		CornerSquareStyle:        c.CornerSquareStyle,
		CornerDotStyle:           c.CornerDotStyle,
		ColorPrimary:             FormatRGBA(c.ColorPrimary, c.ColorPrimaryOpacity),
		ColorSecondary:           FormatRGBA(c.ColorSecondary, c.ColorSecondaryOpacity),
		ColorPrimaryDot:          FormatRGBA(c.ColorPrimaryDot, c.ColorPrimaryOpacity),
		ColorPrimaryCornerSquare: FormatRGBA(c.ColorPrimaryCornerSquare, c.ColorPrimaryOpacity),
		LogoType:                 c.LogoType,
		SocialIconName:           c.SocialIconName,
	}
}

// ApplySettings hydrates the style/color/logo block from a stored
// settings object, tolerating partial or missing subfields by falling
// back to the documented defaults. Override customization flags are
// re-derived from value divergence, since storage does not record them.
func (c *DesignConfiguration) ApplySettings(s models.QRSettings) {
	s.Normalize()

	c.DotsStyle = s.DotsStyle
	c.CornerSquareStyle = s.CornerSquareStyle
	c.CornerDotStyle = s.CornerDotStyle

	if hex, opacity, ok := ExtractRGBA(s.ColorPrimary); ok {
		c.ColorPrimary = hex
		c.ColorPrimaryOpacity = opacity
	} else {
		c.ColorPrimary = "#000000"
		c.ColorPrimaryOpacity = 100
	}
	if hex, opacity, ok := ExtractRGBA(s.ColorSecondary); ok {
		c.ColorSecondary = hex
		c.ColorSecondaryOpacity = opacity
	} else {
		c.ColorSecondary = "#FFFFFF"
		c.ColorSecondaryOpacity = 100
	}

	if hex, _, ok := ExtractRGBA(s.ColorPrimaryDot); ok {
		c.ColorPrimaryDot = hex
	} else {
		c.ColorPrimaryDot = c.ColorPrimary
	}
	if hex, _, ok := ExtractRGBA(s.ColorPrimaryCornerSquare); ok {
		c.ColorPrimaryCornerSquare = hex
	} else {
		c.ColorPrimaryCornerSquare = c.ColorPrimary
	}
	c.ColorPrimaryDotCustomized = c.ColorPrimaryDot != c.ColorPrimary
	c.ColorPrimaryCornerSquareCustomized = c.ColorPrimaryCornerSquare != c.ColorPrimary

	c.LogoType = s.LogoType
	c.SocialIconName = s.SocialIconName
}

// Hydrate maps every field of a persisted record into the configuration
// and arms edit mode. Avatar bytes are restored so a subsequent save
// re-sends them unchanged.
func (c *DesignConfiguration) Hydrate(rec *Record) {
	c.Reset()
	c.Name = rec.Name
	c.URL = rec.URL
	c.Description = rec.Description
	c.ApplySettings(rec.Settings)
	if rec.AvatarFile != nil && !rec.AvatarFile.IsEmpty() {
		c.LogoType = models.LogoAvatar
		c.AvatarData = []byte(rec.AvatarFile.Data)
		c.AvatarContentType = rec.AvatarFile.ContentType
		c.SocialIconName = ""
	}
	c.EditingID = rec.ID
	c.CurrentStep = StepData
}

// validURL accepts absolute http(s) URLs.
func validURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parseOpacity parses an integer percentage in [0,100].
func parseOpacity(s string) (int, bool) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 0 || p > 100 {
		return 0, false
	}
	return p, true
}
