package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jianyuhu/TinyLink/config"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 10 * time.Second

// NewClient connects to the cache tier and fails fast when it is
// unreachable: the counter, the resolution cache and the rate limiter all
// sit on it, so the process is useless without the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}

	return rdb, nil
}
