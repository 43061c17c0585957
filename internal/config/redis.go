package config

// Redis backs the listing cache and the booking rate limiter.  Both degrade
// to pass-through middleware when NewRedisClient returns nil, so the booking
// path never depends on Redis being up.

import (
    "context"
    "crypto/tls"
    "log"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from REDIS_ADDR or REDIS_HOST/REDIS_PORT
// (host/port win when both are set), REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
// REDIS_URL, when set, is parsed with redis.ParseURL and overrides the rest.
// It returns nil when the server does not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
    opts, err := redisOptions()
    if err != nil {
        log.Printf("redis: invalid configuration: %v", err)
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: ping %s failed: %v; cache and rate limit disabled", opts.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}

func redisOptions() (*redis.Options, error) {
    if raw := os.Getenv("REDIS_URL"); raw != "" {
        return redis.ParseURL(raw)
    }
    addr := envStr("REDIS_ADDR", "localhost:6379")
    host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, nil
}
