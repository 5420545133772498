package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	PublicCachePrefix     = "nadi:http-cache:"
	defaultPublicCacheTTL = 30 * time.Second
	maxCachedBody         = 1 << 20
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body     []byte
	overflow bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow {
		return
	}
	if len(w.body)+len(data) > maxCachedBody {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// PublicCache stores anonymous GET responses in Redis for ttl. It must run
// after OptionalAuth; signed-in requests skip the cache and are marked
// private.
func PublicCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = defaultPublicCacheTTL
	}
	maxAge := "max-age=" + strconv.Itoa(int(ttl/time.Second))

	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if IsAuthenticated(c) {
			c.Next()
			if c.Writer.Status() == http.StatusOK {
				c.Writer.Header().Set("Cache-Control", "private, no-store")
			}
			return
		}

		ctx := c.Request.Context()
		key := PublicCachePrefix + c.Request.URL.RequestURI()
		if payload, body, ok := readCachedResponse(ctx, rdb, key); ok {
			c.Header("x-nadi-cache", "hit")
			c.Header("Cache-Control", maxAge)
			c.Data(payload.Status, payload.ContentType, body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer}
		c.Writer = buffer
		c.Next()

		if c.Writer.Status() != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		if cc := strings.ToLower(c.Writer.Header().Get("Cache-Control")); strings.Contains(cc, "no-store") {
			return
		}

		raw, err := json.Marshal(cachedResponse{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		})
		if err != nil {
			return
		}
		_ = rdb.Set(ctx, key, raw, ttl).Err()
	}
}

// PurgeOnWrite drops every cached public response after a successful
// mutating request.
func PurgeOnWrite(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if rdb == nil || c.Request.Method == http.MethodGet {
			return
		}
		if s := c.Writer.Status(); s >= 200 && s < 300 {
			_, _ = PurgePublicCache(c.Request.Context(), rdb)
		}
	}
}

func PurgePublicCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, PublicCachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func readCachedResponse(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, []byte, bool) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedResponse{}, nil, false
	}
	var payload cachedResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cachedResponse{}, nil, false
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedResponse{}, nil, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	return payload, body, true
}
