package middlewares

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// 把 路徑+參數 轉成 SHA1，避免 Redis key 太長
func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheNamespace is the first segment of a route template: "/events/group/:groupID" -> "events".
func CacheNamespace(fullPath string) string {
	p := strings.TrimPrefix(fullPath, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

// CacheKeyFrom returns the Redis key for a cacheable request and its namespace, or "" when the
// request must not be cached (non-GET, unmatched route, root banner, health check).
func CacheKeyFrom(c *gin.Context) (string, string) {
	if c.Request.Method != "GET" || c.FullPath() == "" {
		return "", ""
	}
	ns := CacheNamespace(c.FullPath())
	if ns == "" || ns == "health" {
		return "", ""
	}
	// 用實際路徑，不用路由模板，/events/1 跟 /events/2 才不會撞 key
	return "cache:" + ns + ":" + sha1Hex("GET|"+c.Request.URL.Path+"|"+c.Request.URL.RawQuery), ns
}

func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := CacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}

		if b, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw
		// header 要在 handler 寫 body 之前設定才送得出去
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		// 只快取 2xx
		if bw.Status() >= 200 && bw.Status() < 300 {
			header := map[string][]string{}
			for k, v := range c.Writer.Header() {
				if k == "X-Cache" || k == "X-Request-Id" {
					continue
				}
				header[k] = v
			}
			item := cachedBody{Status: bw.Status(), Header: header, Body: buf.Bytes()}

			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				// 請求的 ctx 可能已逾時，寫入改用獨立 ctx
				_ = rdb.Set(context.Background(), key, o.Bytes(), ttl).Err()
			}
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
