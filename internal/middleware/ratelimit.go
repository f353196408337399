package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
)

var errRateLimited = errors.New("rate limit exceeded")

// sweepThreshold bounds the number of tracked clients before expired
// entries are dropped.
const sweepThreshold = 10000

// client represents a rate-limited client with request count and window start.
type client struct {
	windowStart time.Time
	count       int
}

// RateLimiter is an in-memory middleware that limits requests per client IP.
//
// Behavior:
//   - Allows up to limit requests per window for each client IP.
//   - A limit <= 0 disables limiting.
//   - When exceeded, responds 429 with a fail envelope.
//
// Each call returns a limiter with its own store, so separate routers do not
// share counters. State is per process; multiple replicas each enforce their own limit.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if len(clients) > sweepThreshold {
			for k, cl := range clients {
				if now.Sub(cl.windowStart) > window {
					delete(clients, k)
				}
			}
		}
		cl, ok := clients[ip]
		if !ok || now.Sub(cl.windowStart) > window {
			cl = &client{windowStart: now}
			clients[ip] = cl
		}
		cl.count++
		exceeded := cl.count > limit
		mu.Unlock()

		if exceeded {
			AbortWithError(c, http.StatusTooManyRequests, dto.MessageFailed, errRateLimited)
			return
		}

		c.Next()
	}
}
