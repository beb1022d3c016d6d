// Package server runs the edgegate listeners: the main request path and the
// internal admin surface (health, stats, invalidation, metrics).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wudi/edgegate/internal/cache"
	"github.com/wudi/edgegate/internal/config"
	"github.com/wudi/edgegate/internal/dispatch"
	"github.com/wudi/edgegate/internal/logging"
	"github.com/wudi/edgegate/internal/metrics"
)

// Server wraps the dispatcher with HTTP server functionality.
type Server struct {
	config      *config.Config
	dispatcher  *dispatch.Dispatcher
	collector   *metrics.Collector
	httpServer  *http.Server
	adminServer *http.Server
	redisClient *redis.Client
	startTime   time.Time
}

// New creates a Server: backing stores, TTL policy, cache layer, dispatcher
// and listeners, all from config.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:    cfg,
		collector: metrics.NewCollector(),
		startTime: time.Now(),
	}

	pages, api, err := s.buildStores()
	if err != nil {
		return nil, err
	}

	ttls := cfg.Cache.Categories
	if len(ttls) == 0 {
		ttls = dispatch.DefaultTTLs()
	}
	defaultTTL := cfg.Cache.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = cache.DefaultTTL
	}
	policy := cache.NewTTLPolicy(ttls, defaultTTL)

	routes := dispatch.DefaultRoutes()
	for _, ep := range cfg.Cache.Endpoints {
		routes = append(routes, cache.Route{
			Method:   ep.Method,
			Path:     ep.Path,
			Category: ep.Category,
		})
	}

	layer := cache.NewLayer(pages, api, cache.NewGate(policy), cfg.Cache.APIPrefix, routes)

	s.dispatcher = dispatch.New(dispatch.Options{
		Config:  cfg,
		Layer:   layer,
		Metrics: s.collector,
	})

	s.httpServer = &http.Server{
		Addr:           cfg.Server.Address,
		Handler:        s.dispatcher,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	if cfg.Admin.Enabled {
		s.adminServer = &http.Server{
			Addr:         cfg.Admin.Address,
			Handler:      s.adminHandler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}

	return s, nil
}

// buildStores constructs the two backing stores per the configured backend.
// The page and API caches always get independent namespaces.
func (s *Server) buildStores() (pages, api cache.Store, err error) {
	switch s.config.Cache.Backend {
	case "", "memory":
		maxEntries := s.config.Cache.Memory.MaxEntries
		return cache.NewMemoryStore(maxEntries), cache.NewMemoryStore(maxEntries), nil
	case "redis":
		rc := s.config.Cache.Redis
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		pages = cache.NewRedisStore(s.redisClient, rc.KeyPrefix+"pages:", rc.Retention)
		api = cache.NewRedisStore(s.redisClient, rc.KeyPrefix+"api:", rc.Retention)
		return pages, api, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %q", s.config.Cache.Backend)
	}
}

// Dispatcher exposes the request path, mainly for tests.
func (s *Server) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Start starts the listeners and returns once they are accepting.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	go func() {
		logging.Info("Starting server", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	if s.adminServer != nil {
		go func() {
			logging.Info("Starting admin server", zap.String("address", s.adminServer.Addr))
			if err := s.adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("admin server error: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		// Give listeners a moment to bind
	}
	return nil
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down gracefully...")
	return s.Shutdown(30 * time.Second)
}

// Shutdown stops the listeners, waiting up to timeout for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			logging.Error("Admin server shutdown error", zap.Error(err))
		}
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", zap.Error(err))
		return err
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			logging.Error("Redis close error", zap.Error(err))
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// adminHandler creates the internal admin API handler.
func (s *Server) adminHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/cache/stats", s.handleCacheStats)
	mux.HandleFunc("/cache/invalidate", s.handleInvalidate)
	mux.Handle("/metrics", s.collector.Handler())

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	checks := make(map[string]interface{})
	allHealthy := true

	if s.redisClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		err := s.redisClient.Ping(ctx).Err()
		redisStatus := map[string]interface{}{"status": boolStatus(err == nil)}
		if err != nil {
			redisStatus["error"] = err.Error()
			allHealthy = false
		}
		checks["redis"] = redisStatus
	}

	status := http.StatusOK
	statusStr := "ok"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		statusStr = "degraded"
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    statusStr,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
		"checks":    checks,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := map[string]interface{}{
		"uptime": time.Since(s.startTime).String(),
		"cache":  s.cacheStats(),
	}
	if limiter := s.dispatcher.Limiter(); limiter != nil {
		result["rate_limit"] = limiter.Stats()
	}
	if co := s.dispatcher.Coalescer(); co != nil {
		result["coalesce"] = co.Stats()
	}
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cacheStats())
}

func (s *Server) cacheStats() map[string]cache.Stats {
	layer := s.dispatcher.Layer()
	return map[string]cache.Stats{
		cache.StorePages: cache.Collect(layer.PageStore()),
		cache.StoreAPI:   cache.Collect(layer.APIStore()),
	}
}

// handleInvalidate removes every API-cache entry in the given category:
// POST /cache/invalidate?category=X.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{"error": "use POST"})
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "category query parameter is required"})
		return
	}

	removed := cache.InvalidateByCategory(s.dispatcher.Layer().APIStore(), category)
	s.collector.RecordInvalidation(category, removed)
	logging.Info("Cache invalidated",
		zap.String("category", category),
		zap.Int("removed", removed),
	)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"category": category,
		"removed":  removed,
	})
}

func boolStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "degraded"
}
