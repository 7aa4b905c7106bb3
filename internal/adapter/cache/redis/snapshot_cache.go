package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/core/ports"
)

const keyPrefix = "cinema:snapshot"

type SnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSnapshotCache keeps snapshots under cinema:snapshot:<resource>. A zero
// ttl stores them without expiry.
func NewSnapshotCache(client redis.Cmdable, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(resource domain.Resource) string {
	return fmt.Sprintf("%s:%s", keyPrefix, resource)
}

func (c *SnapshotCache) SaveSnapshot(ctx context.Context, resource domain.Resource, data []byte) error {
	if err := c.client.Set(ctx, snapshotKey(resource), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s snapshot: %w", resource, err)
	}
	return nil
}

func (c *SnapshotCache) LoadSnapshot(ctx context.Context, resource domain.Resource) ([]byte, error) {
	data, err := c.client.Get(ctx, snapshotKey(resource)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSnapshotMiss
		}
		return nil, fmt.Errorf("failed to read %s snapshot: %w", resource, err)
	}
	return data, nil
}
