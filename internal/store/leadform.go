// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// LeadFormStore handles lead-form and submission database operations.
type LeadFormStore struct {
	db *sql.DB
}

// NewLeadFormStore creates a new LeadFormStore with the given database connection.
func NewLeadFormStore(db *sql.DB) *LeadFormStore {
	return &LeadFormStore{db: db}
}

const leadFormColumns = `id, owner_id, title, fields, active, created_at, updated_at`

func scanLeadForm(scanner interface{ Scan(...any) error }) (*models.LeadForm, error) {
	var f models.LeadForm
	var fields []byte
	err := scanner.Scan(&f.ID, &f.OwnerID, &f.Title, &fields, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &f.Fields); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
	}
	return &f, nil
}

// Create inserts a new lead form.
func (s *LeadFormStore) Create(f *models.LeadForm) (*models.LeadForm, error) {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO lead_forms (owner_id, title, fields, active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+leadFormColumns,
		f.OwnerID, f.Title, fields, f.Active)
	created, err := scanLeadForm(row)
	if err != nil {
		return nil, fmt.Errorf("create lead form: %w", err)
	}
	return created, nil
}

// Update replaces the form definition for a form owned by ownerID.
// Returns nil if not found.
func (s *LeadFormStore) Update(f *models.LeadForm) (*models.LeadForm, error) {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	row := s.db.QueryRow(`
		UPDATE lead_forms SET title = $1, fields = $2, active = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5
		RETURNING `+leadFormColumns,
		f.Title, fields, f.Active, f.ID, f.OwnerID)
	updated, err := scanLeadForm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update lead form: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a lead form by UUID. Returns nil if not found.
func (s *LeadFormStore) FindByID(id uuid.UUID) (*models.LeadForm, error) {
	row := s.db.QueryRow(`SELECT `+leadFormColumns+` FROM lead_forms WHERE id = $1`, id)
	f, err := scanLeadForm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lead form: %w", err)
	}
	return f, nil
}

// ListByOwner returns the owner's forms ordered by creation date.
func (s *LeadFormStore) ListByOwner(ownerID uuid.UUID) ([]models.LeadForm, error) {
	rows, err := s.db.Query(`
		SELECT `+leadFormColumns+`
		FROM lead_forms
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list lead forms: %w", err)
	}
	defer rows.Close()

	var forms []models.LeadForm
	for rows.Next() {
		f, err := scanLeadForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead form: %w", err)
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

// Delete removes a form owned by ownerID. Returns false if not found.
func (s *LeadFormStore) Delete(id, ownerID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM lead_forms WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete lead form: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddSubmission stores one visitor submission for a form.
func (s *LeadFormStore) AddSubmission(formID uuid.UUID, values map[string]string) (*models.LeadSubmission, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	var sub models.LeadSubmission
	var raw []byte
	err = s.db.QueryRow(`
		INSERT INTO lead_submissions (form_id, payload)
		VALUES ($1, $2)
		RETURNING id, form_id, payload, created_at
	`, formID, payload).Scan(&sub.ID, &sub.FormID, &raw, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add submission: %w", err)
	}
	if err := json.Unmarshal(raw, &sub.Values); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &sub, nil
}

// Submissions lists a form's submissions, newest first.
func (s *LeadFormStore) Submissions(formID uuid.UUID) ([]models.LeadSubmission, error) {
	rows, err := s.db.Query(`
		SELECT id, form_id, payload, created_at
		FROM lead_submissions
		WHERE form_id = $1
		ORDER BY created_at DESC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.LeadSubmission
	for rows.Next() {
		var sub models.LeadSubmission
		var raw []byte
		if err := rows.Scan(&sub.ID, &sub.FormID, &raw, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(raw, &sub.Values); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
