package main

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/syssam/veloxext/settings"
)

// clientIdle is how long an idle client keeps its limiter.
const clientIdle = 10 * time.Minute

// clientLimiter rate limits requests per client IP.
type clientLimiter struct {
	rate    rate.Limit
	burst   int
	mu      sync.Mutex
	clients *cache.Cache
}

func newClientLimiter(cfg settings.RateLimit) *clientLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(math.Ceil(cfg.Rate)))
	}
	return &clientLimiter{
		rate:    rate.Limit(cfg.Rate),
		burst:   burst,
		clients: cache.New(clientIdle, clientIdle),
	}
}

func (l *clientLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.clients.Get(client); ok {
		// Refresh the expiration of active clients.
		l.clients.SetDefault(client, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	l.clients.SetDefault(client, lim)
	return lim
}

func (l *clientLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
