// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// TeamStore handles all team-related database operations.
type TeamStore struct {
	db *sql.DB
}

// NewTeamStore creates a new TeamStore with the given database connection.
func NewTeamStore(db *sql.DB) *TeamStore {
	return &TeamStore{db: db}
}

const teamColumns = `id, name, owner_id, created_at, updated_at`

func scanTeam(scanner interface{ Scan(...any) error }) (*models.Team, error) {
	var t models.Team
	err := scanner.Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new team and adds the owner as its first member.
func (s *TeamStore) Create(name string, ownerID uuid.UUID) (*models.Team, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO teams (name, owner_id) VALUES ($1, $2)
		RETURNING `+teamColumns, name, ownerID)
	t, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
	`, t.ID, ownerID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("create team owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create team commit: %w", err)
	}
	return t, nil
}

// FindByID retrieves a team by UUID. Returns nil if not found.
func (s *TeamStore) FindByID(id uuid.UUID) (*models.Team, error) {
	row := s.db.QueryRow(`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find team by id: %w", err)
	}
	return t, nil
}

// ListForUser returns every team the user belongs to.
func (s *TeamStore) ListForUser(userID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.owner_id, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// Rename updates a team's name. Only the owner may rename.
func (s *TeamStore) Rename(id, ownerID uuid.UUID, name string) (*models.Team, error) {
	row := s.db.QueryRow(`
		UPDATE teams SET name = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING `+teamColumns, name, id, ownerID)
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rename team: %w", err)
	}
	return t, nil
}

// Delete removes a team. Only the owner may delete. Returns false if
// the team was not found or not owned by ownerID.
func (s *TeamStore) Delete(id, ownerID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM teams WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete team: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Members lists a team's members with their user details.
func (s *TeamStore) Members(teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Query(`
		SELECT m.team_id, m.user_id, m.role, u.email, u.display_name, m.created_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.Email, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember adds a user to a team.
func (s *TeamStore) AddMember(teamID, userID uuid.UUID, role models.Role) error {
	_, err := s.db.Exec(`
		INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, teamID, userID, role)
	if err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a team. Returns false if they were
// not a member.
func (s *TeamStore) RemoveMember(teamID, userID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return false, fmt.Errorf("remove team member: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// IsMember reports whether the user belongs to the team.
func (s *TeamStore) IsMember(teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return exists, nil
}
