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

// QRCodeStore handles all QR-design database operations.
type QRCodeStore struct {
	db *sql.DB
}

// NewQRCodeStore creates a new QRCodeStore with the given database connection.
func NewQRCodeStore(db *sql.DB) *QRCodeStore {
	return &QRCodeStore{db: db}
}

// qrColumns lists the columns selected in qrcode queries.
const qrColumns = `id, owner_id, name, url, description, slug, settings,
	image, image_content_type, avatar, avatar_content_type, image_s3_key,
	created_at, updated_at`

// scanQRCode scans a qrcode row, decoding the settings JSONB block.
func scanQRCode(scanner interface{ Scan(...any) error }) (*models.QRCode, error) {
	var q models.QRCode
	var settings []byte
	err := scanner.Scan(
		&q.ID, &q.OwnerID, &q.Name, &q.URL, &q.Description, &q.Slug, &settings,
		&q.Image, &q.ImageContentType, &q.Avatar, &q.AvatarContentType, &q.ImageS3Key,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &q.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	q.Settings.Normalize()
	return &q, nil
}

// Create inserts a new QR design and returns it with the generated ID.
func (s *QRCodeStore) Create(q *models.QRCode) (*models.QRCode, error) {
	settings, err := json.Marshal(q.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO qrcodes (owner_id, name, url, description, slug, settings,
			image, image_content_type, avatar, avatar_content_type, image_s3_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+qrColumns,
		q.OwnerID, q.Name, q.URL, q.Description, q.Slug, settings,
		q.Image, q.ImageContentType, q.Avatar, q.AvatarContentType, q.ImageS3Key,
	)
	created, err := scanQRCode(row)
	if err != nil {
		return nil, fmt.Errorf("create qrcode: %w", err)
	}
	return created, nil
}

// Update replaces the full configuration of an existing design owned by
// ownerID. Returns nil if the design does not exist or belongs to
// someone else.
func (s *QRCodeStore) Update(q *models.QRCode) (*models.QRCode, error) {
	settings, err := json.Marshal(q.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	row := s.db.QueryRow(`
		UPDATE qrcodes SET name = $1, url = $2, description = $3, settings = $4,
			image = $5, image_content_type = $6, avatar = $7,
			avatar_content_type = $8, image_s3_key = $9, updated_at = NOW()
		WHERE id = $10 AND owner_id = $11
		RETURNING `+qrColumns,
		q.Name, q.URL, q.Description, settings,
		q.Image, q.ImageContentType, q.Avatar, q.AvatarContentType, q.ImageS3Key,
		q.ID, q.OwnerID,
	)
	updated, err := scanQRCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update qrcode: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a single design by its UUID. Returns nil if not found.
func (s *QRCodeStore) FindByID(id uuid.UUID) (*models.QRCode, error) {
	row := s.db.QueryRow(`SELECT `+qrColumns+` FROM qrcodes WHERE id = $1`, id)
	q, err := scanQRCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find qrcode by id: %w", err)
	}
	return q, nil
}

// FindBySlug retrieves a design by its public card slug. Returns nil if
// not found.
func (s *QRCodeStore) FindBySlug(slug string) (*models.QRCode, error) {
	row := s.db.QueryRow(`SELECT `+qrColumns+` FROM qrcodes WHERE slug = $1`, slug)
	q, err := scanQRCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find qrcode by slug: %w", err)
	}
	return q, nil
}

// ListByOwner returns the owner's designs ordered by creation date.
func (s *QRCodeStore) ListByOwner(ownerID uuid.UUID) ([]models.QRCode, error) {
	rows, err := s.db.Query(`
		SELECT `+qrColumns+`
		FROM qrcodes
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list qrcodes: %w", err)
	}
	defer rows.Close()

	var items []models.QRCode
	for rows.Next() {
		q, err := scanQRCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan qrcode: %w", err)
		}
		items = append(items, *q)
	}
	return items, rows.Err()
}

// CountByOwner returns how many designs the owner has saved. Used for
// plan-limit enforcement on create.
func (s *QRCodeStore) CountByOwner(ownerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM qrcodes WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count qrcodes: %w", err)
	}
	return count, nil
}

// Delete removes a design owned by ownerID and returns it so the caller
// can clean up any mirrored S3 objects. Returns nil if not found.
func (s *QRCodeStore) Delete(id, ownerID uuid.UUID) (*models.QRCode, error) {
	row := s.db.QueryRow(`
		DELETE FROM qrcodes WHERE id = $1 AND owner_id = $2
		RETURNING `+qrColumns, id, ownerID)
	q, err := scanQRCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete qrcode: %w", err)
	}
	return q, nil
}

// SlugExists reports whether a card slug is already taken.
func (s *QRCodeStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM qrcodes WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}
