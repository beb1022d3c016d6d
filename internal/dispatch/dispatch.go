// Package dispatch builds the request path: router, business handlers,
// middleware chain, and the caching layer in front of it all.
package dispatch

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/wudi/edgegate/internal/cache"
	"github.com/wudi/edgegate/internal/coalesce"
	"github.com/wudi/edgegate/internal/config"
	"github.com/wudi/edgegate/internal/errors"
	"github.com/wudi/edgegate/internal/handlers"
	"github.com/wudi/edgegate/internal/metrics"
	"github.com/wudi/edgegate/internal/middleware"
	"github.com/wudi/edgegate/internal/middleware/accesslog"
	"github.com/wudi/edgegate/internal/middleware/ratelimit"
	"github.com/wudi/edgegate/internal/middleware/requestid"
)

// DefaultRoutes classifies the cacheable API endpoints into response
// categories. Operators extend or override this set via cache.endpoints in
// the config file.
func DefaultRoutes() []cache.Route {
	return []cache.Route{
		{Method: http.MethodPost, Path: "/api/dashboard/config", Category: "dashboard-config"},
		{Method: http.MethodPost, Path: "/api/traffic/summary", Category: "traffic-summary"},
		{Method: http.MethodPost, Path: "/api/risk/indicators", Category: "indicator-query"},
		{Method: http.MethodGet, Path: "/api/analytics/report", Category: "traffic-summary"},
	}
}

// DefaultTTLs holds the shipped category freshness classes, one per category
// the default routes classify into. Config values replace these wholesale
// when cache.categories is set; config-added categories (e.g. coop-terms in
// the example config) bring their own TTL the same way.
func DefaultTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		"dashboard-config": 30 * time.Minute,
		"traffic-summary":  2 * time.Minute,
		"indicator-query":  30 * time.Second,
	}
}

// Dispatcher wires the whole request path. It implements http.Handler.
type Dispatcher struct {
	router    *httprouter.Router
	handler   http.Handler
	layer     *cache.Layer
	limiter   *ratelimit.Limiter
	coalescer *coalesce.Coalescer
}

// Options configures a Dispatcher.
type Options struct {
	Config  *config.Config
	Layer   *cache.Layer
	Metrics *metrics.Collector
}

// New builds a Dispatcher. Layer is required; Metrics may be nil.
func New(opts Options) *Dispatcher {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	d := &Dispatcher{
		router: httprouter.New(),
		layer:  opts.Layer,
	}

	coop := handlers.NewCooperation()
	traffic := handlers.NewTraffic()
	risk := handlers.NewRisk()
	analytics := handlers.NewAnalytics()
	dashboard := handlers.NewDashboard()

	d.router.GET("/api/cooperation/terms", coop.Terms)
	d.router.POST("/api/cooperation/apply", coop.Apply)
	d.router.POST("/api/traffic/summary", traffic.Summary)
	d.router.POST("/api/risk/indicators", risk.Indicators)
	d.router.GET("/api/analytics/report", analytics.Report)
	d.router.POST("/api/dashboard/config", dashboard.Config)

	// Everything outside the registered routes falls through to the page
	// handler, which serves non-API GETs or a JSON 404.
	d.router.NotFound = handlers.NewPages()
	d.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.ErrMethodNotAllowed.
			WithRequestID(requestid.FromContext(r.Context())).
			WriteJSON(w)
	})
	d.router.HandleMethodNotAllowed = true

	chain := middleware.NewChain(
		requestid.Middleware(),
		accesslog.Middleware(),
	)

	if opts.Metrics != nil {
		chain = chain.Append(d.requestMetrics(opts.Metrics))
		if opts.Layer != nil {
			opts.Layer.SetMetrics(opts.Metrics)
		}
	}

	if cfg.RateLimit.Enabled {
		d.limiter = ratelimit.New(ratelimit.Config{
			Rate:       cfg.RateLimit.Rate,
			Burst:      cfg.RateLimit.Burst,
			Period:     cfg.RateLimit.Period,
			PathPrefix: cfg.Cache.APIPrefix,
		})
		chain = chain.Append(d.limiter.Middleware())
	}

	if cfg.Coalesce.Enabled {
		d.coalescer = coalesce.New(cfg.Coalesce.Timeout)
		// Collapse only requests the cache layer would serve; uncacheable
		// requests like unclassified POSTs keep per-call semantics.
		var eligible func(*http.Request) bool
		if opts.Layer != nil {
			eligible = opts.Layer.Eligible
		}
		chain = chain.Append(d.coalescer.Middleware(eligible))
	}

	if opts.Layer != nil {
		chain = chain.Append(opts.Layer.Middleware())
	}

	d.handler = chain.Then(d.router)
	return d
}

// ServeHTTP dispatches one request through the full chain.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.handler.ServeHTTP(w, r)
}

// Layer returns the cache layer, for admin stats and invalidation.
func (d *Dispatcher) Layer() *cache.Layer { return d.layer }

// Limiter returns the rate limiter, or nil when limiting is disabled.
func (d *Dispatcher) Limiter() *ratelimit.Limiter { return d.limiter }

// Coalescer returns the coalescer, or nil when coalescing is disabled.
func (d *Dispatcher) Coalescer() *coalesce.Coalescer { return d.coalescer }

// requestMetrics records per-request counters and latency. Unregistered
// paths share one label to keep metric cardinality bounded.
func (d *Dispatcher) requestMetrics(collector *metrics.Collector) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "other"
			if handle, _, _ := d.router.Lookup(r.Method, r.URL.Path); handle != nil {
				route = r.URL.Path
			}
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			collector.RecordRequest(route, r.Method, sw.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
