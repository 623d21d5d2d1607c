// Package server assembles the HTTP surface: routes, middleware chain and the
// fasthttp listener.
package server

import (
	"context"
	"log"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"sustainapi/internal/config"
	"sustainapi/internal/dataset"
	"sustainapi/internal/http/handlers"
	appmw "sustainapi/internal/http/middleware"
	ui "sustainapi/web"
)

const shutdownTimeout = 5 * time.Second

// Options are the collaborators the server routes to. DB is optional.
type Options struct {
	Config   *config.Config
	Store    *dataset.Store
	DB       *gorm.DB
	Metrics  *handlers.Metrics
	Gatherer prometheus.Gatherer
}

// Server serves the metrics API.
type Server struct {
	cfg     *config.Config
	handler fasthttp.RequestHandler
	limiter *appmw.RateLimiter
}

// New builds the router and the global middleware chain.
func New(opts Options) *Server {
	cfg := opts.Config
	s := &Server{cfg: cfg}

	r := router.New()
	r.SaveMatchedRoutePath = true
	r.NotFound = handlers.NotFound
	r.MethodNotAllowed = handlers.MethodNotAllowed

	r.ServeFS("/static/{filepath:*}", ui.StaticFS())

	r.GET("/", func(ctx *fasthttp.RequestCtx) {
		ctx.Redirect("/docs", fasthttp.StatusSeeOther)
	})
	r.GET("/docs", handlers.DocsPage(opts.Store, cfg.ServiceName))
	r.GET("/health", handlers.Health(opts.Store, cfg.ServiceName))
	r.GET("/metrics", handlers.MetricsHandler(opts.Gatherer))

	r.GET("/api/v1/buildings", handlers.Buildings(opts.Store))
	r.GET("/api/v1/metrics", handlers.ListMetrics(opts.Store))
	// The static segment takes priority over {building}.
	r.GET("/api/v1/metrics/campus-wide", handlers.CampusWide(opts.Store))
	r.GET("/api/v1/metrics/{building}", handlers.BuildingMetrics(opts.Store))
	r.GET("/api/v1/dataset", handlers.DatasetInfo(opts.Store, opts.DB))

	// Global middleware chain: request id, logger, tracing, metrics, CORS,
	// rate limit, then router.
	h := r.Handler
	if cfg.RateLimitRPS > 0 {
		s.limiter = appmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		h = s.limiter.Middleware(h)
	}
	h = appmw.CORS(cfg.CORSOrigin)(h)
	if opts.Metrics != nil {
		h = opts.Metrics.Instrument(h)
	}
	h = appmw.Tracing(h)
	h = appmw.RequestLogger(h)
	h = appmw.RequestID(h)
	s.handler = h

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() fasthttp.RequestHandler { return s.handler }

// ListenAndServe serves on the configured address until ctx is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &fasthttp.Server{
		Handler:            s.handler,
		Name:               s.cfg.ServiceName,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: 64 * 1024,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("%s listening on %s", s.cfg.ServiceName, s.cfg.ListenAddr)
	err := srv.ListenAndServe(s.cfg.ListenAddr)
	if ctx.Err() != nil {
		<-done
	}
	return err
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
