package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the location cache with Redis, letting the server rely
// on Redis-side expiry instead of sweeping keys itself.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) SetLocation(ctx context.Context, playerID uint, coord Coordinate, ttl time.Duration) error {
	data, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKey(playerID), data, ttl).Err()
}

func (c *RedisCache) GetLocation(ctx context.Context, playerID uint) (Coordinate, bool, error) {
	data, err := c.client.Get(ctx, locationKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Coordinate{}, false, nil
		}
		return Coordinate{}, false, err
	}
	var coord Coordinate
	if err := json.Unmarshal(data, &coord); err != nil {
		return Coordinate{}, false, err
	}
	return coord, true, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
