package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"dacsan-be/internal/logger"
	"dacsan-be/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SubmitPath is limited with the strict tier.
const SubmitPath = "/api/v1/checkout/submit"

type tier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// order submission
	tierStrict = tier{"strict", rate.Limit(2), 5}
	// catalog, cart and flow calls
	tierGeneral = tier{"general", rate.Limit(10), 20}
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per shopper and tier.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	idle     time.Duration
}

func NewLimiter() *Limiter {
	return &Limiter{
		visitors: make(map[string]*visitor),
		idle:     3 * time.Minute,
	}
}

func (l *Limiter) get(key string, t tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup drops buckets not used since before now-idle.
func (l *Limiter) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, key)
			n++
		}
	}
	return n
}

// Run cleans up idle buckets every minute until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Cleanup(now)
		}
	}
}

// Middleware rejects requests over the caller's quota with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := resolveTier(r)
		key := identity(r, t) + ":" + t.name

		if !l.get(key, t).Allow() {
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("tier", t.name),
				zap.String("path", r.URL.Path),
			)
			utils.WriteJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity keys submissions by remote IP. Other calls use the session when the
// client presented one, then a client supplied device id, then the remote IP.
// A session issued on this very request is not trusted: a client that drops its
// token would otherwise get a fresh bucket every time.
func identity(r *http.Request, t tier) string {
	ip := remoteIP(r)
	if t == tierStrict {
		return "ip:" + ip
	}
	if sid := logger.SessionIDFrom(r.Context()); sid != "" && !issuedNow(r.Context()) {
		return "session:" + sid
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	return "ip:" + ip
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func resolveTier(r *http.Request) tier {
	if r.Method == http.MethodPost && r.URL.Path == SubmitPath {
		return tierStrict
	}
	return tierGeneral
}
