// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// card.go provides a Valkey-backed cache for rendered public card pages.
// Scanning a printed QR code hits the public card URL, so these pages see
// bursty anonymous traffic and are served from Valkey when possible.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// cardKeyPrefix is the Valkey key prefix for cached card pages.
	cardKeyPrefix = "card:"

	// DefaultCardTTL is how long a rendered card page stays cached.
	DefaultCardTTL = 5 * time.Minute
)

// CardCache manages rendered card page HTML in Valkey.
type CardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCardCache creates a card page cache backed by the given Valkey client.
func NewCardCache(client *redis.Client, ttl time.Duration) *CardCache {
	if ttl == 0 {
		ttl = DefaultCardTTL
	}
	return &CardCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a card slug. Returns false on miss.
func (cc *CardCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	val, err := cc.client.Get(ctx, cardKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("card cache get error", "slug", slug, "error", err)
		return nil, false
	}
	slog.Debug("card cache hit", "slug", slug)
	return val, true
}

// Set stores rendered HTML for a card slug with the configured TTL.
func (cc *CardCache) Set(ctx context.Context, slug string, html []byte) {
	if err := cc.client.Set(ctx, cardKeyPrefix+slug, html, cc.ttl).Err(); err != nil {
		slog.Warn("card cache set error", "slug", slug, "error", err)
	}
}

// Invalidate removes a single card page from the cache. Called whenever
// the owner saves the card's design or details.
func (cc *CardCache) Invalidate(ctx context.Context, slug string) {
	if err := cc.client.Del(ctx, cardKeyPrefix+slug).Err(); err != nil {
		slog.Warn("card cache invalidate error", "slug", slug, "error", err)
	}
	slog.Debug("card cache invalidated", "slug", slug)
}

// InvalidateAll removes all cached card pages by scanning for the prefix.
func (cc *CardCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, cardKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("card cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("card cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("card cache fully cleared", "deleted", deleted)
	}
}
