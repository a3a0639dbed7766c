// Package web serves the watchlist UI and a few JSON endpoints. It is a thin
// presentation layer: all data comes in as plain rows and snapshots.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/purserdev/purser/internal/domain"
	"github.com/purserdev/purser/internal/services/scraper"
)

type rowSource interface {
	BuildWatchlistRows(ctx context.Context) ([]domain.WatchlistRow, error)
}

type itemStore interface {
	AddItem(ctx context.Context, item domain.Item) (domain.Item, error)
	SetTarget(ctx context.Context, target domain.Target) error
}

type batchChecker interface {
	CheckAllItems(ctx context.Context) error
}

// Server exposes the watchlist page, item submission and the manual check
// trigger.
type Server struct {
	Addr    string
	Rows    rowSource
	Store   itemStore
	Checker batchChecker
	Logger  *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, rows rowSource, store itemStore, checker batchChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Rows: rows, Store: store, Checker: checker, Logger: logger}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/rows", s.handleRows)
	mux.HandleFunc("/items", s.handleAddItem)
	mux.HandleFunc("/check/now", s.handleCheckNow)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server error", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	rows, err := s.Rows.BuildWatchlistRows(r.Context())
	if err != nil {
		s.Logger.Error("failed to build watchlist rows", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct{ Rows []domain.WatchlistRow }{rows}); err != nil {
		s.Logger.Error("failed to render index", zap.Error(err))
	}
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Rows.BuildWatchlistRows(r.Context())
	if err != nil {
		s.Logger.Error("failed to build watchlist rows", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		s.Logger.Error("failed to encode rows", zap.Error(err))
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	rawURL := r.PostFormValue("url")
	if rawURL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	item := domain.Item{
		URL:    rawURL,
		Domain: scraper.RegistrableDomain(rawURL),
		Title:  rawURL,
	}
	item, err := s.Store.AddItem(r.Context(), item)
	if err != nil {
		s.Logger.Error("failed to add item", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if targetStr := r.PostFormValue("target_cents"); targetStr != "" {
		cents, err := strconv.ParseInt(targetStr, 10, 64)
		if err != nil || cents < 0 {
			http.Error(w, "invalid target_cents", http.StatusBadRequest)
			return
		}
		if err := s.Store.SetTarget(r.Context(), domain.Target{ItemID: item.ID, TargetCents: cents}); err != nil {
			s.Logger.Error("failed to set target", zap.Error(err))
		}
	}

	s.Logger.Info("item added", zap.Int64("item_id", item.ID), zap.String("url", item.URL))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Runs the same bounded batch as the scheduler; the caller waits for the
	// whole batch to complete.
	if err := s.Checker.CheckAllItems(r.Context()); err != nil {
		s.Logger.Error("manual check failed", zap.Error(err))
		http.Error(w, "check failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}
