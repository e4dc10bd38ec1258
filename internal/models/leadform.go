// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType enumerates the input kinds a lead form can contain.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
)

// ValidFieldType reports whether t is a known field type.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldEmail, FieldPhone, FieldTextarea, FieldCheckbox:
		return true
	}
	return false
}

// FormField is one input of a lead form. The field list is stored as
// JSONB on the form row.
type FormField struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// LeadForm is a contact-capture form attached to an account. Visitors
// reach it from a card's landing page and submit through the public
// endpoint.
type LeadForm struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Title     string      `json:"title"`
	Fields    []FormField `json:"fields"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LeadSubmission is one visitor submission; values are keyed by field key.
type LeadSubmission struct {
	ID        uuid.UUID         `json:"id"`
	FormID    uuid.UUID         `json:"form_id"`
	Values    map[string]string `json:"values"`
	CreatedAt time.Time         `json:"created_at"`
}
