package embeddings

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// VectorCache stores computed image vectors in redis so repeated sync runs
// skip re-inference for unchanged images. A nil cache is a no-op, so the
// service works without redis configured.
type VectorCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewVectorCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *VectorCache {
	if client == nil {
		return nil
	}
	return &VectorCache{client: client, ttl: ttl, log: log}
}

func cacheKey(model, imageURL string) string {
	sum := sha1.Sum([]byte(imageURL))
	return fmt.Sprintf("emb:%s:%s", model, hex.EncodeToString(sum[:]))
}

func (c *VectorCache) Get(ctx context.Context, model, imageURL string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKey(model, imageURL)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("embedding cache read failed")
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (c *VectorCache) Set(ctx context.Context, model, imageURL string, vec []float32) {
	if c == nil {
		return
	}

	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(model, imageURL), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("embedding cache write failed")
	}
}
