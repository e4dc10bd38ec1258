package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// defaultIcons is the fixed social-icon catalog served to designer
// clients. Icon images live under icons/<name>.png in the public bucket.
var defaultIcons = []struct{ Name, URL string }{
	{"facebook", "/static/icons/facebook.png"},
	{"instagram", "/static/icons/instagram.png"},
	{"linkedin", "/static/icons/linkedin.png"},
	{"twitter", "/static/icons/twitter.png"},
	{"youtube", "/static/icons/youtube.png"},
	{"tiktok", "/static/icons/tiktok.png"},
	{"whatsapp", "/static/icons/whatsapp.png"},
	{"telegram", "/static/icons/telegram.png"},
}

// Seed populates the database with initial development data: a default
// account and the social-icon catalog. It is a no-op when users exist.
func Seed(db *sql.DB) error {
	if err := seedIcons(db); err != nil {
		return err
	}

	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default account password.
	hash, err := bcrypt.GenerateFromPassword([]byte("cardpress"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default account. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, plan, totp_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, "owner@cardpress.local", string(hash), "Owner", "owner", "free", false)
	if err != nil {
		return fmt.Errorf("seed insert owner: %w", err)
	}

	slog.Info("database seeded with default account",
		"email", "owner@cardpress.local",
		"password", "cardpress",
	)

	return nil
}

// seedIcons upserts the fixed icon catalog so new icons ship with
// deployments without a separate migration.
func seedIcons(db *sql.DB) error {
	for _, ic := range defaultIcons {
		_, err := db.Exec(`
			INSERT INTO icons (name, url) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET url = EXCLUDED.url
		`, ic.Name, ic.URL)
		if err != nil {
			return fmt.Errorf("seed icon %s: %w", ic.Name, err)
		}
	}
	return nil
}
