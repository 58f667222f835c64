package api

import (
	"context"
	"github.com/frodejac/genoserve/internal/random"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type RequestIDKey struct{}

// RequestIdMiddleware adds a unique request ID to each request
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = random.HexString(16)
			r.Header.Set("X-Request-ID", requestID)
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), RequestIDKey{}, requestID))
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleWare logs the incoming requests
func LoggingMiddleWare(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		slog.Info(
			"Request received",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("range", r.Header.Get("Range")),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("request_id", r.Context().Value(RequestIDKey{})),
		)
		next.ServeHTTP(w, r)
		slog.Info(
			"Request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("request_id", r.Context().Value(RequestIDKey{})),
			slog.Duration("duration", time.Since(t0)),
		)
	})
}

// SecurityHeadersMiddleware adds security headers to all responses. There is
// no Content-Security-Policy since the viewer loads igv.js from a CDN.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent browsers from MIME-sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Referrer Policy
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// CorsMiddleware lets the viewer issue cross-origin range requests and read
// the range headers of the responses.
func CorsMiddleware(withAuth bool) func(http.Handler) http.Handler {
	allowedHeaders := []string{"Range", "Content-Type", "Accept"}
	if withAuth {
		allowedHeaders = append(allowedHeaders, "Authorization")
	}
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: allowedHeaders,
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges"},
	})
	return c.Handler
}

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// have gone quiet expire from the cache.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		clients: cache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.clients.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.clients.Set(key, lim, cache.DefaultExpiration)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.clients.Add(key, lim, cache.DefaultExpiration); err != nil {
		// Another request created it first
		if v, ok := l.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientIP(r)).Allow() {
			slog.Warn("Rate limit exceeded",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("request_id", r.Context().Value(RequestIDKey{})),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
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
