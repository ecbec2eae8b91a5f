package session

import (
	"time"

	"github.com/go-redis/redis"
)

// RedisClient is the subset of *redis.Client AggregateStats needs for its
// optional cross-process cache: Get/Set string values by key. Declaring it
// as an interface rather than taking *redis.Client directly in Options
// keeps sessions usable in tests without a running Redis server.
type RedisClient interface {
	Get(key string) (string, error)
	Set(key string, value string, ttl time.Duration) error
}

// NewRedisClient adapts a real go-redis client into the RedisClient
// interface Options.Redis expects.
func NewRedisClient(client *redis.Client) RedisClient {
	return &redisAdapter{client: client}
}

type redisAdapter struct {
	client *redis.Client
}

func (a *redisAdapter) Get(key string) (string, error) {
	v, err := a.client.Get(key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (a *redisAdapter) Set(key string, value string, ttl time.Duration) error {
	return a.client.Set(key, value, ttl).Err()
}
