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

// Teams groups team management handlers. Teams let a pro account share
// its card catalog with invited members.
type Teams struct {
	teamStore *store.TeamStore
	userStore *store.UserStore
}

// NewTeams creates a new Teams handler group.
func NewTeams(teamStore *store.TeamStore, userStore *store.UserStore) *Teams {
	return &Teams{teamStore: teamStore, userStore: userStore}
}

type teamRequest struct {
	Name string `json:"name"`
}

// Create makes a new team owned by the authenticated user.
func (t *Teams) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Team name is required.")
		return
	}

	team, err := t.teamStore.Create(req.Name, sess.UserID)
	if err != nil {
		slog.Error("create team failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "team": team})
}

// List returns the teams the authenticated user belongs to.
func (t *Teams) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	teams, err := t.teamStore.ListForUser(sess.UserID)
	if err != nil {
		slog.Error("list teams failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "teams": teams})
}

// Rename updates a team's name. Only the team owner may rename it.
func (t *Teams) Rename(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team ID.")
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Team name is required.")
		return
	}

	team, err := t.teamStore.Rename(id, sess.UserID, req.Name)
	if err != nil {
		slog.Error("rename team failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "Team not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "team": team})
}

// Delete removes a team. Only the team owner may delete it.
func (t *Teams) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team ID.")
		return
	}

	deleted, err := t.teamStore.Delete(id, sess.UserID)
	if err != nil {
		slog.Error("delete team failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Team not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Members lists a team's members with joined account details. Only
// visible to other members of the same team.
func (t *Teams) Members(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team ID.")
		return
	}

	isMember, err := t.teamStore.IsMember(id, sess.UserID)
	if err != nil {
		slog.Error("membership check failed", "error", err, "team", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !isMember {
		writeError(w, http.StatusNotFound, "Team not found.")
		return
	}

	members, err := t.teamStore.Members(id)
	if err != nil {
		slog.Error("list members failed", "error", err, "team", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "members": members})
}

type addMemberRequest struct {
	Email string `json:"email"`
}

// AddMember invites an existing account into the team by email. Only the
// team owner may add members.
func (t *Teams) AddMember(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team ID.")
		return
	}

	team, err := t.teamStore.FindByID(id)
	if err != nil {
		slog.Error("find team failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if team == nil || team.OwnerID != sess.UserID {
		writeError(w, http.StatusNotFound, "Team not found.")
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := t.userStore.FindByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		slog.Error("member lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "No account with this email.")
		return
	}

	if err := t.teamStore.AddMember(id, user.ID, models.RoleMember); err != nil {
		slog.Error("add member failed", "error", err, "team", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RemoveMember removes a member from the team. Only the team owner may
// remove members, and the owner cannot remove themselves.
func (t *Teams) RemoveMember(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team ID.")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	team, err := t.teamStore.FindByID(teamID)
	if err != nil {
		slog.Error("find team failed", "error", err, "id", teamID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if team == nil || team.OwnerID != sess.UserID {
		writeError(w, http.StatusNotFound, "Team not found.")
		return
	}
	if userID == team.OwnerID {
		writeError(w, http.StatusBadRequest, "The team owner cannot be removed.")
		return
	}

	removed, err := t.teamStore.RemoveMember(teamID, userID)
	if err != nil {
		slog.Error("remove member failed", "error", err, "team", teamID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Member not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
