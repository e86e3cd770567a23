// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// preview.go provides a Valkey-backed cache of article bodies rendered to
// HTML. Rendering Markdown on every preview request is wasted work; bodies
// only change when the pipeline or an editor touches them, so the cache key
// includes the content's updated_at timestamp and stale entries simply age
// out.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// previewKeyPrefix is the Valkey key prefix for cached previews.
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL is how long a rendered preview stays cached.
	DefaultPreviewTTL = 10 * time.Minute
)

// PreviewCache manages rendered HTML previews in Valkey. A nil *PreviewCache
// is valid and caches nothing, so callers need no guard when Valkey is
// absent.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache backed by the given Valkey client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// Key builds the cache key for one content item at one revision.
func Key(contentID uuid.UUID, updatedAt time.Time) string {
	return fmt.Sprintf("%s:%d", contentID, updatedAt.UnixNano())
}

// Get retrieves cached HTML. Returns (nil, false) on miss or error.
func (pc *PreviewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, previewKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("preview cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (pc *PreviewCache) Set(ctx context.Context, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, previewKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "key", key, "error", err)
	}
}

// Invalidate removes every cached revision of a content item. Called on
// publish so the public rendering never serves a pre-publish body.
func (pc *PreviewCache) Invalidate(ctx context.Context, contentID uuid.UUID) {
	if pc == nil {
		return
	}
	pattern := fmt.Sprintf("%s%s:*", previewKeyPrefix, contentID)
	var cursor uint64
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("preview cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("preview cache delete error", "error", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}
