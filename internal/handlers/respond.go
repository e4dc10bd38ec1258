// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handler groups for the CardPress
// API: authentication, the QR designer endpoints, teams, lead forms,
// and the public card pages.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"cardpress/internal/models"
)

// limitInfo is the sub-object attached to envelopes when the free-plan
// card limit blocks a save.
type limitInfo struct {
	LimitReached bool `json:"limitReached"`
	MaxAllowed   int  `json:"maxAllowed"`
}

// envelope is the uniform response shape of the designer endpoints.
type envelope struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"message,omitempty"`
	QRData   *models.BinaryPayload `json:"qrData,omitempty"`
	Response *limitInfo            `json:"response,omitempty"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

// writeEnvelope is writeJSON specialized for the designer envelope.
func writeEnvelope(w http.ResponseWriter, status int, env *envelope) {
	writeJSON(w, status, env)
}

// writeError writes a failure envelope with the given message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, &envelope{Success: false, Message: message})
}

// writeLimitReached writes the limit-reached envelope. The client maps
// this shape to its upgrade/cancel prompt.
func writeLimitReached(w http.ResponseWriter, maxAllowed int) {
	writeEnvelope(w, http.StatusOK, &envelope{
		Success: false,
		Message: "You have reached the maximum number of QR codes for your plan.",
		Response: &limitInfo{
			LimitReached: true,
			MaxAllowed:   maxAllowed,
		},
	})
}
