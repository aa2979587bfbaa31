// Package http exposes the bookkeeping API: record CRUD, fuel configuration,
// daily summaries, report exports, and backup/restore.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mpump/internal/ledger"
	"mpump/internal/services"
	"mpump/internal/store"
)

type Server struct {
	http.Server
	svc         *services.RecordService
	store       store.Store
	rateLimiter *rateLimiter

	// Daily summaries are recomputed on demand; the cache absorbs dashboard
	// polling between mutations.
	summaryCache *lruCache[ledger.DailySummary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.RecordService, st store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:              svc,
		store:            st,
		rateLimiter:      newRateLimiter(),
		summaryCache:     newLRUCache[ledger.DailySummary](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/fuel-sales", s.with(s.handleListFuelSales))
	mux.HandleFunc("POST /api/fuel-sales", s.with(s.handleCreateFuelSale))
	mux.HandleFunc("PUT /api/fuel-sales/{id}", s.with(s.handleUpdateFuelSale))
	mux.HandleFunc("DELETE /api/fuel-sales/{id}", s.with(s.handleDeleteFuelSale))

	mux.HandleFunc("GET /api/credit-sales", s.with(s.handleListCreditSales))
	mux.HandleFunc("POST /api/credit-sales", s.with(s.handleCreateCreditSale))
	mux.HandleFunc("PUT /api/credit-sales/{id}", s.with(s.handleUpdateCreditSale))
	mux.HandleFunc("POST /api/credit-sales/{id}/settle", s.with(s.handleSettleCreditSale))
	mux.HandleFunc("DELETE /api/credit-sales/{id}", s.with(s.handleDeleteCreditSale))

	mux.HandleFunc("GET /api/entries", s.with(s.handleListEntries))
	mux.HandleFunc("POST /api/entries", s.with(s.handleCreateEntry))
	mux.HandleFunc("PUT /api/entries/{id}", s.with(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.with(s.handleDeleteEntry))

	mux.HandleFunc("GET /api/fuel-config", s.with(s.handleGetFuelConfig))
	mux.HandleFunc("PUT /api/fuel-config/{type}", s.with(s.handlePutFuelType))
	mux.HandleFunc("DELETE /api/fuel-config/{type}", s.with(s.handleDeleteFuelType))

	mux.HandleFunc("GET /api/summary", s.with(s.handleSummary))
	mux.HandleFunc("GET /api/summary/range", s.with(s.handleRangeSummary))
	mux.HandleFunc("GET /api/nozzles", s.with(s.handleNozzles))

	mux.HandleFunc("GET /api/reports/sales.csv", s.with(s.handleSalesCSV))
	mux.HandleFunc("GET /api/reports/credit.csv", s.with(s.handleCreditCSV))
	mux.HandleFunc("GET /api/reports/entries.csv", s.with(s.handleEntriesCSV))
	mux.HandleFunc("GET /api/reports/summary.csv", s.with(s.handleSummaryCSV))
	mux.HandleFunc("GET /api/reports/daily.txt", s.with(s.handleDailyText))
	mux.HandleFunc("GET /api/reports/daily.pdf", s.with(s.handleDailyPDF))
	mux.HandleFunc("GET /api/reports/range.pdf", s.with(s.handleRangePDF))

	mux.HandleFunc("GET /api/backup", s.with(s.handleBackup))
	mux.HandleFunc("POST /api/restore", s.with(s.handleRestore))

	return s
}

// with adds security headers, rate limiting, and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.DebugContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateSummaries is called after every mutation. A dated mutation drops
// just that day; deletes and restores drop everything.
func (s *Server) invalidateSummaries(date string) {
	if date == "" {
		s.summaryCache.Purge()
		return
	}
	s.summaryCache.Delete(date)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the store answers before reporting readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.GetFuelConfig(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
