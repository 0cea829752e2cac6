package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

const generationKey = "leads:generation"

type leadCache struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewLeadCache creates the short-lived lead read cache. Entry keys embed a
// generation counter that every lead write bumps, so a filter served after a
// write can never hit an entry computed before it; stale generations simply
// age out through the TTL.
func NewLeadCache(client *redislib.Client, ttl time.Duration) repository.LeadCache {
	if ttl <= 0 {
		ttl = 20 * time.Second
	}
	return &leadCache{client: client, ttl: ttl}
}

func (c *leadCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if err == redislib.Nil {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (c *leadCache) Bump(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *leadCache) Get(ctx context.Context, generation int64, fingerprint string) ([]domain.Lead, bool) {
	payload, err := c.client.Get(ctx, c.key(generation, fingerprint)).Bytes()
	if err != nil {
		return nil, false
	}
	var leads []domain.Lead
	if err := json.Unmarshal(payload, &leads); err != nil {
		return nil, false
	}
	return leads, true
}

func (c *leadCache) Set(ctx context.Context, generation int64, fingerprint string, leads []domain.Lead) {
	payload, err := json.Marshal(leads)
	if err != nil {
		return
	}
	// Cache failures only cost a re-read; never surface them.
	_ = c.client.Set(ctx, c.key(generation, fingerprint), payload, c.ttl).Err()
}

func (c *leadCache) key(generation int64, fingerprint string) string {
	return fmt.Sprintf("leads:g%d:%s", generation, fingerprint)
}
