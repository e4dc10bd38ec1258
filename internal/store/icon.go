// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"cardpress/internal/models"
)

// IconStore reads the fixed social-icon catalog.
type IconStore struct {
	db *sql.DB
}

// NewIconStore creates a new IconStore with the given database connection.
func NewIconStore(db *sql.DB) *IconStore {
	return &IconStore{db: db}
}

// List returns the full catalog ordered by name.
func (s *IconStore) List() ([]models.Icon, error) {
	rows, err := s.db.Query(`SELECT name, url FROM icons ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	defer rows.Close()

	var icons []models.Icon
	for rows.Next() {
		var ic models.Icon
		if err := rows.Scan(&ic.Name, &ic.URL); err != nil {
			return nil, fmt.Errorf("scan icon: %w", err)
		}
		icons = append(icons, ic)
	}
	return icons, rows.Err()
}

// Find returns one catalog entry by name. Returns nil if not found.
func (s *IconStore) Find(name string) (*models.Icon, error) {
	var ic models.Icon
	err := s.db.QueryRow(`SELECT name, url FROM icons WHERE name = $1`, name).Scan(&ic.Name, &ic.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find icon: %w", err)
	}
	return &ic, nil
}
