// Package http serves the wallet front-end: an HTMX-driven page shell
// whose tabs load server-rendered partials. All data comes from the api
// ports; nothing is persisted locally.
package http

import (
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneydesk/internal/api"
	"moneydesk/internal/receipt"
	"moneydesk/internal/services"
	appweb "moneydesk/web"
)

type Server struct {
	http.Server
	templates *template.Template

	dir       api.ClientDirectory
	txs       api.TransactionLister
	refdata   api.ReferenceData
	funder    api.WalletFunder
	analytics api.Analytics

	onboarding *services.Onboarding
	funding    *services.Funding
	exporter   *receipt.Exporter

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires routes, templates and services, returning a
// ready-to-run http.Server.
func NewServer(addr string, dir api.ClientDirectory, txs api.TransactionLister, ref api.ReferenceData, funder api.WalletFunder, analytics api.Analytics, fonts receipt.Fonts) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		dir:         dir,
		txs:         txs,
		refdata:     ref,
		funder:      funder,
		analytics:   analytics,
		onboarding:  services.NewOnboarding(dir),
		funding:     services.NewFunding(dir, ref, txs, funder),
		exporter:    receipt.NewExporter(dir, fonts),
		rateLimiter: newRateLimiter(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Transactions tab
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/transactions/receipt", s.withSecurityHeaders(s.handleReceiptModal))
	mux.HandleFunc("/transactions/receipt/pdf", s.withSecurityHeaders(s.handleReceiptPDF))

	// Clients tab
	mux.HandleFunc("/clients", s.withSecurityHeaders(s.handleClients))
	mux.HandleFunc("/clients/add", s.withSecurityHeaders(s.handleClientAddForm))
	mux.HandleFunc("/clients/create", s.withSecurityHeaders(s.handleClientCreate))
	mux.HandleFunc("/clients/edit", s.withSecurityHeaders(s.handleClientEditForm))
	mux.HandleFunc("/clients/update", s.withSecurityHeaders(s.handleClientUpdate))
	mux.HandleFunc("/consent.png", s.withSecurityHeaders(s.handleConsentImage))

	// Replenishments tab
	mux.HandleFunc("/replenishments", s.withSecurityHeaders(s.handleReplenishments))
	mux.HandleFunc("/replenishments/search", s.withSecurityHeaders(s.handleReplenishmentsSearch))
	mux.HandleFunc("/replenishments/report", s.withSecurityHeaders(s.handleReportPDF))

	// Wallet funding
	mux.HandleFunc("/topup", s.withSecurityHeaders(s.handleTopUpView))
	mux.HandleFunc("/topup/submit", s.withSecurityHeaders(s.handleTopUpSubmit))
	mux.HandleFunc("/withdraw", s.withSecurityHeaders(s.handleWithdrawView))
	mux.HandleFunc("/withdraw/submit", s.withSecurityHeaders(s.handleWithdrawSubmit))

	// Charts tab
	mux.HandleFunc("/charts", s.withSecurityHeaders(s.handleCharts))
	mux.HandleFunc("/charts/summary", s.withSecurityHeaders(s.handleChartsSummary))
	mux.HandleFunc("/charts/history", s.withSecurityHeaders(s.handleChartsHistory))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine before shutting the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady verifies templates and the API connection.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, err := s.refdata.Banks(ctx); err != nil {
		checks["api"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["api"] = "ok"
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
