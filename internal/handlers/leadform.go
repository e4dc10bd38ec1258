// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardpress/internal/middleware"
	"cardpress/internal/models"
	"cardpress/internal/store"
)

// LeadForms groups lead capture form handlers: owners define forms,
// anonymous card visitors submit them.
type LeadForms struct {
	formStore *store.LeadFormStore
}

// NewLeadForms creates a new LeadForms handler group.
func NewLeadForms(formStore *store.LeadFormStore) *LeadForms {
	return &LeadForms{formStore: formStore}
}

type leadFormRequest struct {
	Title  string             `json:"title"`
	Fields []models.FormField `json:"fields"`
	Active bool               `json:"active"`
}

// normalizeFields fills in defaults and keys for submitted field specs.
func normalizeFields(fields []models.FormField) []models.FormField {
	out := make([]models.FormField, 0, len(fields))
	for _, f := range fields {
		f.Label = strings.TrimSpace(f.Label)
		if f.Key == "" {
			f.Key = strings.ToLower(strings.ReplaceAll(f.Label, " ", "_"))
		}
		if !models.ValidFieldType(f.Type) {
			f.Type = models.FieldText
		}
		out = append(out, f)
	}
	return out
}

func fieldLabels(fields []models.FormField) []string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label
	}
	return labels
}

// Create defines a new lead form for the authenticated user.
func (l *LeadForms) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req leadFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := validateLeadForm(req.Title, fieldLabels(req.Fields)); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	form, err := l.formStore.Create(&models.LeadForm{
		OwnerID: sess.UserID,
		Title:   strings.TrimSpace(req.Title),
		Fields:  normalizeFields(req.Fields),
		Active:  req.Active,
	})
	if err != nil {
		slog.Error("create lead form failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "form": form})
}

// List returns the authenticated user's lead forms.
func (l *LeadForms) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	forms, err := l.formStore.ListByOwner(sess.UserID)
	if err != nil {
		slog.Error("list lead forms failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "forms": forms})
}

// Get returns one lead form for its owner.
func (l *LeadForms) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form, ok := l.ownedForm(w, r, sess.UserID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "form": form})
}

// Update replaces a lead form's definition.
func (l *LeadForms) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID.")
		return
	}

	var req leadFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := validateLeadForm(req.Title, fieldLabels(req.Fields)); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	form, err := l.formStore.Update(&models.LeadForm{
		ID:      id,
		OwnerID: sess.UserID,
		Title:   strings.TrimSpace(req.Title),
		Fields:  normalizeFields(req.Fields),
		Active:  req.Active,
	})
	if err != nil {
		slog.Error("update lead form failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if form == nil {
		writeError(w, http.StatusNotFound, "Form not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "form": form})
}

// Delete removes a lead form and its submissions.
func (l *LeadForms) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID.")
		return
	}

	deleted, err := l.formStore.Delete(id, sess.UserID)
	if err != nil {
		slog.Error("delete lead form failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Form not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Submissions lists a form's captured submissions for its owner.
func (l *LeadForms) Submissions(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form, ok := l.ownedForm(w, r, sess.UserID)
	if !ok {
		return
	}

	subs, err := l.formStore.Submissions(form.ID)
	if err != nil {
		slog.Error("list submissions failed", "error", err, "form", form.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "submissions": subs})
}

// Submit captures an anonymous visitor submission. Public: reached from
// a card page, no session required. Inactive forms reject submissions.
func (l *LeadForms) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID.")
		return
	}

	form, err := l.formStore.FindByID(id)
	if err != nil {
		slog.Error("find lead form failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if form == nil || !form.Active {
		writeError(w, http.StatusNotFound, "Form not found.")
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	// Required fields must be present and non-empty; unknown keys are dropped.
	clean := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		v := strings.TrimSpace(values[f.Key])
		if f.Required && v == "" {
			writeError(w, http.StatusBadRequest, f.Label+" is required.")
			return
		}
		if v != "" {
			clean[f.Key] = v
		}
	}

	if _, err := l.formStore.AddSubmission(form.ID, clean); err != nil {
		slog.Error("add submission failed", "error", err, "form", form.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// ownedForm parses the id parameter and loads the form, enforcing
// ownership. Writes the error response itself on failure.
func (l *LeadForms) ownedForm(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) (*models.LeadForm, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID.")
		return nil, false
	}

	form, err := l.formStore.FindByID(id)
	if err != nil {
		slog.Error("find lead form failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return nil, false
	}
	if form == nil || form.OwnerID != ownerID {
		writeError(w, http.StatusNotFound, "Form not found.")
		return nil, false
	}
	return form, true
}
