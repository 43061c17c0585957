package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/modex/screening-booking/internal/config"
)

// captureWriter tees the response body (up to limit bytes) while it is
// written to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if room := cw.limit - cw.buf.Len(); cw.limit <= 0 {
        cw.buf.Write(b)
    } else if room > 0 {
        cw.buf.Write(b[:min(room, len(b))])
    }
    return cw.ResponseWriter.Write(b)
}

// genKey holds the listing generation.  It sits outside the prefix:* space
// so Invalidate's SCAN never deletes it.
func genKey(prefix string) string { return prefix + "-gen" }

// cacheKey hashes the parts chosen by cfg.KeyStrategy under cfg.Prefix and
// the generation current when the request started.
func cacheKey(cfg config.CacheConfig, c echo.Context, gen int64) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "method_route":
        parts = []string{"method", r.Method, "route", c.Path()}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
    default: // route_query
        parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
    }
    // c.Path() is the route pattern; include resolved params so /shows/1 and
    // /shows/2 never share an entry.
    for _, v := range c.ParamValues() {
        parts = append(parts, "p", v)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%d:%x", cfg.Prefix, gen, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    out = append(out, hdrJSON...)
    return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache caches 200 responses for the configured methods, replaying
// stored headers and body byte for byte.  Responses larger than
// MaxBodyBytes are served but not cached.  With caching disabled or no
// client it is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            // A response rendered before an invalidation is stored under the
            // old generation, where no later request looks.
            gen, err := rdb.Get(ctx, genKey(cfg.Prefix)).Int64()
            if err != nil && !errors.Is(err, redis.Nil) {
                return next(c)
            }
            key := cacheKey(cfg, c, gen)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, _ = c.Response().Write(body)
                    return nil
                }
            }

            limit := cfg.MaxBodyBytes
            capture := 0
            if limit > 0 {
                capture = limit + 1 // one extra byte tells "exactly limit" from "over"
            }
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: capture}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (limit > 0 && cw.buf.Len() > limit) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                _ = rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

// CacheInvalidator deletes every cached response under one prefix.
type CacheInvalidator struct {
    rdb    *redis.Client
    prefix string
}

// NewCacheInvalidator returns nil when caching is off or rdb is nil.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) *CacheInvalidator {
    if !cfg.Enabled || rdb == nil {
        return nil
    }
    return &CacheInvalidator{rdb: rdb, prefix: cfg.Prefix}
}

// Invalidate bumps the generation, then walks the prefix with SCAN and
// deletes matches in batches so it never blocks Redis the way KEYS would.  A nil invalidator is a no-op.
func (ci *CacheInvalidator) Invalidate(ctx context.Context) error {
    if ci == nil {
        return nil
    }
    if err := ci.rdb.Incr(ctx, genKey(ci.prefix)).Err(); err != nil {
        return err
    }
    iter := ci.rdb.Scan(ctx, 0, ci.prefix+":*", 200).Iterator()
    batch := make([]string, 0, 200)
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) == cap(batch) {
            if err := ci.rdb.Del(ctx, batch...).Err(); err != nil {
                return err
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(batch) > 0 {
        return ci.rdb.Del(ctx, batch...).Err()
    }
    return nil
}
