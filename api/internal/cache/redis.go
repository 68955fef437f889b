// Package cache keeps finished calculation results in Redis so identical
// commands skip the model.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"calc-agent/api/internal/types"
	"calc-agent/api/internal/util"
)

const keyPrefix = "calc:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opt), ttl: ttl}, nil
}

func Key(d types.Domain, expr string) string {
	return keyPrefix + string(d) + ":" + util.SHA256Hex(expr)
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get reports a miss on any error; the cache is best effort.
func (c *Redis) Get(ctx context.Context, d types.Domain, expr string) (*types.CalculationResult, bool) {
	b, err := c.client.Get(ctx, Key(d, expr)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get: %v", err)
		}
		return nil, false
	}
	var res types.CalculationResult
	if err := json.Unmarshal(b, &res); err != nil {
		log.Printf("cache: corrupt entry %s: %v", Key(d, expr), err)
		return nil, false
	}
	return &res, true
}

func (c *Redis) Set(ctx context.Context, d types.Domain, expr string, res *types.CalculationResult) {
	b, err := json.Marshal(res)
	if err != nil {
		log.Printf("cache: marshal: %v", err)
		return
	}
	if err := c.client.Set(ctx, Key(d, expr), b, c.ttl).Err(); err != nil {
		log.Printf("cache: set: %v", err)
	}
}

func (c *Redis) Close() error {
	return c.client.Close()
}
