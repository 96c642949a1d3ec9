package handlers

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"media-gallery/pkg/logging"
	"media-gallery/pkg/metrics"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one,
// stores it in the request context and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(logging.RequestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		w.Header().Set(logging.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// LoggingMiddleware logs one record per completed request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := metrics.NewResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		slog.InfoContext(r.Context(), "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.StatusCode(),
			"duration", time.Since(start).String())
	})
}

// RecoveryMiddleware turns a panicking handler into a 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "Panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))
				writeFailure(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limiterIdleTTL is how long an idle client's limiter is kept
const limiterIdleTTL = 10 * time.Minute

// LoginLimiter throttles login attempts per client IP. Clients are keyed by
// the connection's remote address only; forwarding headers are ignored.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	rate     rate.Limit
	burst    int
	enabled  bool
}

// NewLoginLimiter allows perMinute attempts per client with an equal burst.
// A non-positive perMinute disables limiting.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	return &LoginLimiter{
		limiters: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		enabled:  perMinute > 0,
	}
}

// Allow reports whether clientID may attempt another login
func (l *LoginLimiter) Allow(clientID string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	var limiter *rate.Limiter
	if cached, ok := l.limiters.Get(clientID); ok {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.rate, l.burst)
	}
	// refresh the idle expiry on every attempt
	l.limiters.Set(clientID, limiter, cache.DefaultExpiration)
	l.mu.Unlock()

	return limiter.Allow()
}

// Clients returns the number of clients currently tracked
func (l *LoginLimiter) Clients() int {
	return l.limiters.ItemCount()
}

// Middleware rejects requests over the limit with 429
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeFailure(w, "Too many login attempts", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
