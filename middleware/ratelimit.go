package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	rps       float64
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		m:       make(map[string]*limiterEntry),
		rps:     rps,
		burst:   burst,
		idleTTL: limiterIdleTTL,
		now:     time.Now,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.sweep(now)
	if e, ok := p.m[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = &limiterEntry{limiter: l, lastSeen: now}
	return l
}

// sweep drops idle limiters at most once per idleTTL. Caller holds p.mu.
func (p *limiterPool) sweep(now time.Time) {
	if now.Sub(p.lastSweep) < p.idleTTL {
		return
	}
	p.lastSweep = now
	for key, e := range p.m {
		if now.Sub(e.lastSeen) >= p.idleTTL {
			delete(p.m, key)
		}
	}
}

// RateLimit throttles each client IP to rps requests per second with the given
// burst. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) {}
	}
	if burst < 1 {
		burst = 1
	}
	limiters := newLimiterPool(rps, burst)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			abortWith(c, http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}
