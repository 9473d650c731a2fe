package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// windowCounter is a fixed-window counter kept in process memory. It stands
// in for Redis when no Redis address is configured.
type windowCounter struct {
	mu      sync.Mutex
	window  time.Duration
	clients map[string]*clientInfo
	now     func() time.Time
}

func newWindowCounter(window time.Duration) *windowCounter {
	return &windowCounter{window: window, clients: make(map[string]*clientInfo), now: time.Now}
}

// incr counts a hit for key and returns the count within the current window.
func (w *windowCounter) incr(key string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	ci, ok := w.clients[key]
	if !ok || now.Sub(ci.start) > w.window {
		if len(w.clients) > 10000 {
			w.evictLocked(now)
		}
		ci = &clientInfo{start: now}
		w.clients[key] = ci
	}
	ci.count++
	return int64(ci.count)
}

func (w *windowCounter) evictLocked(now time.Time) {
	for k, ci := range w.clients {
		if now.Sub(ci.start) > w.window {
			delete(w.clients, k)
		}
	}
}

// SimpleRateLimit blocks clients that send more than maxRequests per window
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	counter := newWindowCounter(window)
	return func(c *gin.Context) {
		if counter.incr(c.ClientIP()) > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
