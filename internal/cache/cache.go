package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prediag/inference-service/internal/inference"
	"github.com/redis/go-redis/v9"
)

// PredictionCache keeps recent prediction records in Redis so callers can
// re-fetch a result by id without re-running inference. Records are stored
// as JSON under "prediction:<id>" with a TTL.
type PredictionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPredictionCache creates a cache with the given TTL. Prefix may be empty.
func NewPredictionCache(client *redis.Client, prefix string, ttl time.Duration) *PredictionCache {
	if prefix == "" {
		prefix = "prediction:"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PredictionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *PredictionCache) key(id string) string {
	return c.prefix + id
}

// Put stores a prediction record.
func (c *PredictionCache) Put(ctx context.Context, rec *inference.PredictionRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.PredictionID), b, c.ttl).Err()
}

// Get returns a cached record, or nil when the id is unknown or expired.
func (c *PredictionCache) Get(ctx context.Context, id string) (*inference.PredictionRecord, error) {
	b, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var rec inference.PredictionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
