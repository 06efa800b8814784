package rest

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/fortuna/courtside/internal/metrics"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RecoveryMiddleware turns a handler panic into a 500
func RecoveryMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic serving request",
						"path", r.URL.Path,
						"panic", rec,
						"request_id", middleware.GetReqID(r.Context()),
						"stack", string(debug.Stack()))
					respondError(w, http.StatusInternalServerError, "Internal server error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs every request and records it under its route template
func LoggingMiddleware(logger *slog.Logger, m *metrics.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			m.ObserveHTTP(route, r.Method, rec.status, elapsed)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

// TimingMiddleware adds X-Process-Time to every response
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw := &timingWriter{ResponseWriter: w, start: start}
		next.ServeHTTP(tw, r)
		tw.stamp()
	})
}

type timingWriter struct {
	http.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	ms := float64(time.Since(w.start).Microseconds()) / 1000.0
	w.Header().Set("X-Process-Time", strconv.FormatFloat(ms, 'f', 2, 64)+"ms")
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type peerKey struct{}

// PeerMiddleware records the connection's remote host before RealIP replaces
// RemoteAddr with a client-supplied forwarding header
func PeerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, hostOf(r.RemoteAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// peerOf is the connection peer recorded by PeerMiddleware, or the current
// RemoteAddr host when the request did not pass through it
func peerOf(r *http.Request) string {
	if peer, ok := r.Context().Value(peerKey{}).(string); ok {
		return peer
	}
	return hostOf(r.RemoteAddr)
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

type peerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// peerLimiter holds one token bucket per peer. A bucket idle for a whole
// window has refilled, so it is dropped on the next sweep.
type peerLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*peerBucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	nextSweep time.Time
	now       func() time.Time
}

func newPeerLimiter(requestsPerWindow int, window time.Duration) *peerLimiter {
	if requestsPerWindow < 1 {
		requestsPerWindow = 1
	}
	return &peerLimiter{
		buckets: make(map[string]*peerBucket),
		limit:   rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:   requestsPerWindow,
		idle:    window,
		now:     time.Now,
	}
}

func (l *peerLimiter) allow(peer string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.nextSweep) {
		for p, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.idle {
				delete(l.buckets, p)
			}
		}
		l.nextSweep = now.Add(l.idle)
	}

	b, ok := l.buckets[peer]
	if !ok {
		b = &peerBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[peer] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *peerLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitMiddleware allows each connection peer requestsPerWindow requests
// per window. Forwarding headers are ignored when keying.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration) func(http.Handler) http.Handler {
	return rateLimit(newPeerLimiter(requestsPerWindow, window), window)
}

func rateLimit(limiter *peerLimiter, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(peerOf(r)) {
				w.Header().Set("Retry-After", retryAfter)
				respondError(w, http.StatusTooManyRequests, "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
