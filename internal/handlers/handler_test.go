// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"cardpress/internal/cache"
	"cardpress/internal/database"
	"cardpress/internal/middleware"
	"cardpress/internal/models"
	"cardpress/internal/session"
	"cardpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "cardpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "cardpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "card:*", "qrcodeIcons"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Sessions  *session.Store
	UserStore *store.UserStore
	QRStore   *store.QRCodeStore
	IconStore *store.IconStore
	TeamStore *store.TeamStore
	FormStore *store.LeadFormStore
	IconCache *cache.IconCache
	CardCache *cache.CardCache
	Auth      *Auth
	Designer  *Designer
	Teams     *Teams
	LeadForms *LeadForms
	Public    *Public
}

// testFreeLimit caps free-plan designs in handler tests.
const testFreeLimit = 3

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	qrStore := store.NewQRCodeStore(db)
	iconStore := store.NewIconStore(db)
	teamStore := store.NewTeamStore(db)
	formStore := store.NewLeadFormStore(db)
	iconCache := cache.NewIconCache(vk, 1*time.Minute)
	cardCache := cache.NewCardCache(vk, 1*time.Minute)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Sessions:  sessions,
		UserStore: userStore,
		QRStore:   qrStore,
		IconStore: iconStore,
		TeamStore: teamStore,
		FormStore: formStore,
		IconCache: iconCache,
		CardCache: cardCache,
		Auth:      NewAuth(sessions, userStore),
		Designer:  NewDesigner(qrStore, userStore, iconStore, iconCache, cardCache, nil, testFreeLimit),
		Teams:     NewTeams(teamStore, userStore),
		LeadForms: NewLeadForms(formStore),
		Public:    NewPublic(qrStore, cardCache),
	}
}

// newTestUser creates a throwaway account and registers cleanup.
func (env *testEnv) newTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })
	user, err := env.UserStore.Create(email, "pass12345", "Handler Test", models.RoleOwner)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

// sessionFor builds session data matching a user.
func sessionFor(user *models.User) *session.Data {
	return &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Plan:        string(user.Plan),
		TwoFADone:   true,
	}
}

// withSession adds session data to a request using the middleware key.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both a chi URL param and a session.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// seedTestIcon inserts one catalog icon and registers cleanup.
func (env *testEnv) seedTestIcon(t *testing.T, name string) {
	t.Helper()
	env.DB.Exec(`INSERT INTO icons (name, url) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, "/static/icons/"+name+".png")
	t.Cleanup(func() { env.DB.Exec(`DELETE FROM icons WHERE name = $1`, name) })
	env.IconCache.Invalidate(context.Background())
}
