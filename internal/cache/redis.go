package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Redis is a Cache backed by go-redis, for deployments that share the
// cache primitive across multiple gateway processes.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis pings addr and returns a ready Redis cache, or an error if the
// connection cannot be established.
func NewRedis(addr, password string, db int, keyPrefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Redis{client: client, keyPrefix: keyPrefix}, nil
}

func (c *Redis) redisKey(key template.IoID) string {
	return c.keyPrefix + strconv.FormatUint(uint64(key), 36)
}

func (c *Redis) Get(ctx context.Context, key template.IoID) (dynval.Value, bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dynval.Value{}, false, nil
		}
		return dynval.Value{}, false, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return dynval.Value{}, false, err
	}
	return dynval.FromAny(v), true, nil
}

func (c *Redis) Set(ctx context.Context, key template.IoID, value dynval.Value, ttl time.Duration) error {
	raw, err := json.Marshal(value.ToAny())
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.redisKey(key), raw, ttl).Err()
}
