package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"btc-basis/internal/basis"
)

// Redis shares memoized results between API instances. Values are JSON with
// a TTL; Redis failures degrade to cache misses.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// DialRedis parses a redis:// URL and checks the server is reachable.
func DialRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return NewRedis(rdb, ttl), nil
}

func (c *Redis) Get(ctx context.Context, key string) (*basis.Result, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: redis get %s: %v", key, err)
		}
		return nil, false
	}
	res, err := decode(raw)
	if err != nil {
		log.Printf("cache: dropping undecodable entry %s: %v", key, err)
		c.rdb.Del(ctx, redisKey(key))
		return nil, false
	}
	return res, true
}

func (c *Redis) Set(ctx context.Context, key string, res *basis.Result) {
	if c == nil || res == nil {
		return
	}
	raw, err := encode(res)
	if err != nil {
		log.Printf("cache: encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, redisKey(key), raw, c.ttl).Err(); err != nil {
		log.Printf("cache: redis set %s: %v", key, err)
	}
}

func (c *Redis) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func redisKey(key string) string { return "btcbasis:result:" + key }
