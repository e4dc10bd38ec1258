// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"testing"
)

func TestQRSettingsNormalizeFillsDefaults(t *testing.T) {
	var s QRSettings
	s.Normalize()

	def := DefaultQRSettings()
	if s != def {
		t.Errorf("Normalize() on zero value = %+v, want defaults %+v", s, def)
	}
}

func TestQRSettingsNormalizeRejectsUnknownStyles(t *testing.T) {
	s := QRSettings{
		DotsStyle:         "zigzag",
		CornerSquareStyle: "wavy",
		CornerDotStyle:    "star",
		LogoType:          "hologram",
	}
	s.Normalize()

	if s.DotsStyle != DotsRounded || s.CornerSquareStyle != CornerSquareExtraRounded || s.CornerDotStyle != CornerDotDot {
		t.Errorf("unknown styles not replaced: %s/%s/%s", s.DotsStyle, s.CornerSquareStyle, s.CornerDotStyle)
	}
	if s.LogoType != LogoNone {
		t.Errorf("unknown logo type not replaced: %s", s.LogoType)
	}
}

func TestQRSettingsNormalizeKeepsValidValues(t *testing.T) {
	s := QRSettings{
		DotsStyle:      DotsClassy,
		ColorPrimary:   "rgba(17, 34, 51, 1)",
		LogoType:       LogoSocial,
		SocialIconName: "linkedin",
	}
	s.Normalize()

	if s.DotsStyle != DotsClassy {
		t.Errorf("valid dots style replaced: %s", s.DotsStyle)
	}
	if s.ColorPrimary != "rgba(17, 34, 51, 1)" {
		t.Errorf("valid primary replaced: %s", s.ColorPrimary)
	}
	// Unset overrides follow the primary, not the global default.
	if s.ColorPrimaryDot != s.ColorPrimary || s.ColorPrimaryCornerSquare != s.ColorPrimary {
		t.Errorf("overrides = %s/%s, want primary", s.ColorPrimaryDot, s.ColorPrimaryCornerSquare)
	}
	if s.SocialIconName != "linkedin" {
		t.Errorf("icon name dropped: %q", s.SocialIconName)
	}
}

func TestQRSettingsNormalizeClearsStaleIconName(t *testing.T) {
	s := QRSettings{LogoType: LogoAvatar, SocialIconName: "linkedin"}
	s.Normalize()
	if s.SocialIconName != "" {
		t.Errorf("icon name kept with %s logo: %q", s.LogoType, s.SocialIconName)
	}
}

func TestByteArrayWireShape(t *testing.T) {
	out, err := json.Marshal(ByteArray{0, 137, 255})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[0,137,255]" {
		t.Errorf("marshal = %s, want number array", out)
	}

	var back ByteArray
	if err := json.Unmarshal([]byte(" [ 0, 137, 255 ] "), &back); err != nil {
		t.Fatal(err)
	}
	if string(back) != string([]byte{0, 137, 255}) {
		t.Errorf("unmarshal = %v", []byte(back))
	}
}

func TestByteArrayNil(t *testing.T) {
	out, err := json.Marshal(ByteArray(nil))
	if err != nil || string(out) != "null" {
		t.Errorf("marshal nil = %s, %v", out, err)
	}
	var back ByteArray
	if err := json.Unmarshal([]byte("null"), &back); err != nil || back != nil {
		t.Errorf("unmarshal null = %v, %v", back, err)
	}
}

func TestByteArrayRejectsOutOfRange(t *testing.T) {
	var b ByteArray
	if err := json.Unmarshal([]byte("[256]"), &b); err == nil {
		t.Error("value 256 accepted")
	}
	if err := json.Unmarshal([]byte("[-1]"), &b); err == nil {
		t.Error("value -1 accepted")
	}
	if err := json.Unmarshal([]byte(`"AAEC"`), &b); err == nil {
		t.Error("base64 string accepted")
	}
}

func TestBinaryPayloadIsEmpty(t *testing.T) {
	var p *BinaryPayload
	if !p.IsEmpty() {
		t.Error("nil payload not empty")
	}
	if !(&BinaryPayload{ContentType: "image/png"}).IsEmpty() {
		t.Error("zero-byte payload not empty")
	}
	if (&BinaryPayload{Data: ByteArray{1}}).IsEmpty() {
		t.Error("non-empty payload reported empty")
	}
}

func TestUserQRLimit(t *testing.T) {
	free := &User{Plan: PlanFree}
	if got := free.QRLimit(3); got != 3 {
		t.Errorf("free limit = %d, want 3", got)
	}
	pro := &User{Plan: PlanPro}
	if got := pro.QRLimit(3); got != -1 {
		t.Errorf("pro limit = %d, want unlimited (-1)", got)
	}
}

func TestValidFieldType(t *testing.T) {
	for _, ft := range []FieldType{FieldText, FieldEmail, FieldPhone, FieldTextarea, FieldCheckbox} {
		if !ValidFieldType(ft) {
			t.Errorf("ValidFieldType(%s) = false", ft)
		}
	}
	if ValidFieldType("dropdown") {
		t.Error("unknown field type accepted")
	}
}
