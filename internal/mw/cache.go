package mw

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"farmflow-backend/internal/log"
)

// CachedResponse is a captured GET response.
type CachedResponse struct {
	Status  int         `json:"status"`
	Headers http.Header `json:"headers"`
	Body    []byte      `json:"body"`
}

// ResponseCache stores captured responses by request URI.
type ResponseCache interface {
	Get(ctx context.Context, key string) (CachedResponse, bool)
	Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration)
	// Generation changes on every Flush.
	Generation(ctx context.Context) (uint64, error)
	// Flush drops every cached response and starts a new generation.
	Flush(ctx context.Context) error
}

// cacheKey scopes a request URI to a cache generation. A response rendered
// before a Flush is stored under the old generation and never served again.
func cacheKey(generation uint64, uri string) string {
	return strconv.FormatUint(generation, 10) + ":" + uri
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware that serves repeated GET requests from store.
func Cache(store ResponseCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		generation, err := store.Generation(ctx)
		if err != nil {
			log.Warn("response cache unavailable, serving uncached", "error", err)
			c.Next()
			return
		}
		key := cacheKey(generation, c.Request.RequestURI)
		if cached, found := store.Get(ctx, key); found {
			for k, v := range cached.Headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			store.Set(ctx, key, CachedResponse{
				Status:  blw.Status(),
				Headers: blw.Header().Clone(),
				Body:    blw.body.Bytes(),
			}, ttl)
		}
	}
}

// InvalidateOnWrite flushes store after every successful non-GET request,
// so reads never see data older than the last committed write.
func InvalidateOnWrite(store ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		if err := store.Flush(c.Request.Context()); err != nil {
			log.Warn("response cache flush failed", "error", err)
		}
	}
}
