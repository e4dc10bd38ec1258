// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// icons.go provides a Valkey-backed cache for the social icon catalog.
// The catalog changes rarely, so the serialized list is kept under a
// single well-known key and served without touching Postgres.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cardpress/internal/models"
)

const (
	// IconCatalogKey is the Valkey key holding the serialized icon list.
	IconCatalogKey = "qrcodeIcons"

	// DefaultIconTTL is how long the icon catalog stays cached.
	DefaultIconTTL = time.Hour
)

// IconCache manages the cached social icon catalog in Valkey.
type IconCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIconCache creates an icon cache backed by the given Valkey client.
func NewIconCache(client *redis.Client, ttl time.Duration) *IconCache {
	if ttl == 0 {
		ttl = DefaultIconTTL
	}
	return &IconCache{client: client, ttl: ttl}
}

// Get retrieves the cached icon catalog. Returns false on miss or decode
// failure; a corrupt entry is treated as a miss so callers refill it.
func (ic *IconCache) Get(ctx context.Context) ([]models.Icon, bool) {
	val, err := ic.client.Get(ctx, IconCatalogKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("icon cache get error", "error", err)
		return nil, false
	}

	var icons []models.Icon
	if err := json.Unmarshal(val, &icons); err != nil {
		slog.Warn("icon cache decode error", "error", err)
		return nil, false
	}
	return icons, true
}

// Set stores the icon catalog with the configured TTL.
func (ic *IconCache) Set(ctx context.Context, icons []models.Icon) {
	payload, err := json.Marshal(icons)
	if err != nil {
		slog.Warn("icon cache encode error", "error", err)
		return
	}
	if err := ic.client.Set(ctx, IconCatalogKey, payload, ic.ttl).Err(); err != nil {
		slog.Warn("icon cache set error", "error", err)
	}
}

// Invalidate drops the cached catalog. Called when icons are reseeded.
func (ic *IconCache) Invalidate(ctx context.Context) {
	if err := ic.client.Del(ctx, IconCatalogKey).Err(); err != nil {
		slog.Warn("icon cache invalidate error", "error", err)
	}
}
