package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for card fields.
const (
	maxNameLen        = 150
	maxDescriptionLen = 500
	maxURLLen         = 2048
	maxFormTitleLen   = 200
	maxFieldLabelLen  = 100
)

// validateCard checks card form inputs and returns the first error found.
func validateCard(name, rawURL, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 150 characters)."
	}
	if msg := validateCardURL(rawURL); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 500 characters)."
	}
	return ""
}

// validateCardURL checks the card's destination URL.
func validateCardURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "URL is required."
	}
	if len(rawURL) > maxURLLen {
		return "URL is too long (max 2048 characters)."
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "URL must be a valid http or https address."
	}
	return ""
}

// validateLeadForm checks lead form inputs and returns the first error found.
func validateLeadForm(title string, fieldLabels []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Form title is required."
	}
	if utf8.RuneCountInString(title) > maxFormTitleLen {
		return "Form title is too long (max 200 characters)."
	}
	if len(fieldLabels) == 0 {
		return "At least one field is required."
	}
	for _, label := range fieldLabels {
		if strings.TrimSpace(label) == "" {
			return "Field labels cannot be empty."
		}
		if utf8.RuneCountInString(label) > maxFieldLabelLen {
			return "Field label is too long (max 100 characters)."
		}
	}
	return ""
}
