package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 60 * time.Second
	idempotencePrefix = "nadi:idempotence:"
)

// Idempotence rejects a repeated POST while the first one is running or for
// a minute after it succeeded. Generation endpoints use it so a double
// submit does not produce two articles.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := idempotencePrefix + key
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "identical request already succeeded, wait a minute before repeating it"
			if val == "0" {
				msg = "identical request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if ok, setErr := rdb.SetNX(ctx, redisKey, "0", idempotenceTTL).Result(); setErr != nil || !ok {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

// resolveIdempotenceKey prefers the explicit header and otherwise hashes
// the request line, body and caller.
func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	caller := CurrentUserID(c)
	if caller == "" {
		caller = c.ClientIP()
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" + caller
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
