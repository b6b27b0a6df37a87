// Package http exposes the JSON API over the aggregation engine.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Store is the persistence surface the API needs beyond the services.
type Store interface {
	services.TransactionStore
	services.ObjectiveStore
	services.NotificationStore
	services.RecurringSourceStore

	FilterTransactions(ctx context.Context, ownerID string, f storage.TransactionFilter) ([]core.Transaction, error)
	GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error)
	PutPreferences(ctx context.Context, p core.Preferences) error
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	store        Store
	transactions *services.TransactionService
	objectives   *services.ObjectiveService
	dashboard    *services.DashboardService
	importer     *services.RecurringImporter

	// Per-owner snapshot cache, invalidated on every write.
	snapshotCache *cache.LRUCache[core.DashboardSnapshot]
	cacheManager  *cache.Manager

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	startTime    time.Time
	shutdownOnce sync.Once
}

// Deps bundles the collaborators a Server needs.
type Deps struct {
	Store        Store
	Transactions *services.TransactionService
	Objectives   *services.ObjectiveService
	Dashboard    *services.DashboardService
	Importer     *services.RecurringImporter
	CacheTTL     time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:         deps.Store,
		transactions:  deps.Transactions,
		objectives:    deps.Objectives,
		dashboard:     deps.Dashboard,
		importer:      deps.Importer,
		snapshotCache: cache.NewLRUCache[core.DashboardSnapshot](1000, ttl),
		cacheManager:  cache.NewManager(),
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
		startTime:     time.Now(),
	}

	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.protect(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.protect(s.handleCreateTransaction))
	mux.HandleFunc("POST /api/transactions/bulk-delete", s.protect(s.handleBulkDeleteTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.protect(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protect(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protect(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/objectives", s.protect(s.handleListObjectives))
	mux.HandleFunc("POST /api/objectives", s.protect(s.handleCreateObjective))
	mux.HandleFunc("GET /api/objectives/{id}", s.protect(s.handleGetObjective))
	mux.HandleFunc("PUT /api/objectives/{id}", s.protect(s.handleUpdateObjective))
	mux.HandleFunc("DELETE /api/objectives/{id}", s.protect(s.handleDeleteObjective))
	mux.HandleFunc("POST /api/objectives/{id}/funds", s.protect(s.handleAddFunds))

	mux.HandleFunc("GET /api/dashboard", s.protect(s.handleDashboard))

	mux.HandleFunc("GET /api/notifications", s.protect(s.handleListNotifications))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.protect(s.handleMarkNotificationRead))

	mux.HandleFunc("GET /api/preferences", s.protect(s.handleGetPreferences))
	mux.HandleFunc("PUT /api/preferences", s.protect(s.handlePutPreferences))

	mux.HandleFunc("GET /api/recurring-sources", s.protect(s.handleListRecurringSources))
	mux.HandleFunc("POST /api/recurring-sources", s.protect(s.handleCreateRecurringSource))
	mux.HandleFunc("POST /api/recurring-sources/import", s.protect(s.handleImportRecurring))

	return s
}

// protect adds security headers, rate limiting, and request logging.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		reqLog := log.FromContext(ctx).WithComponent(log.ComponentHTTP).With(log.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, reqLog)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			reqLog.WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		// Mutating requests are rate limited per client IP.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		log.NewStructuredLogger(reqLog).LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  "storage unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics exposes application and security counters in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	rateLimitHits := atomic.LoadInt64(&s.metrics.rateLimitHits)
	suspiciousRequests := atomic.LoadInt64(&s.metrics.suspiciousRequests)
	activeClients := s.rateLimiter.ActiveClients()
	snapshotEntries := s.snapshotCache.Size()
	uptime := time.Since(s.startTime)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", suspiciousRequests)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", activeClients)

	fmt.Fprintf(w, "# HELP snapshot_cache_entries Current dashboard snapshot cache entries\n")
	fmt.Fprintf(w, "# TYPE snapshot_cache_entries gauge\n")
	fmt.Fprintf(w, "snapshot_cache_entries %d\n\n", snapshotEntries)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}

// invalidateSnapshot drops the cached dashboard after any write for the owner.
func (s *Server) invalidateSnapshot(ownerID string) {
	s.snapshotCache.Delete(ownerID)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
