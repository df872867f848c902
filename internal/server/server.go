package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/product-aggregator/internal/build"
	"github.com/rohmanhakim/product-aggregator/internal/catalog"
	"github.com/rohmanhakim/product-aggregator/internal/logger"
	"github.com/rohmanhakim/product-aggregator/internal/metrics"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Catalog is the product query surface the HTTP routes expose.
type Catalog interface {
	AllProducts(ctx context.Context) ([]product.Record, error)
	BySource(ctx context.Context, sourceID string) ([]product.Record, error)
	Search(ctx context.Context, query string) ([]product.Record, error)
	Sources() []catalog.SourceInfo
}

// Server serves the catalog as JSON over HTTP.
type Server struct {
	engine  *gin.Engine
	catalog Catalog
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds the gin engine with request ids, request logging, panic
// recovery and, when m is not nil, request metrics plus /metrics.
func New(c Catalog, log *zap.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(logger.RequestID())
	if m != nil {
		engine.Use(m.GinMiddleware())
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	s := &Server{
		engine:  engine,
		catalog: c,
		logger:  log,
		metrics: m,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.engine.Group("/api")
	api.GET("/sources", s.sources)
	api.GET("/products", s.allProducts)
	api.GET("/products/:source", s.productsBySource)
	api.GET("/search", s.search)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("addr", addr), zap.String("version", build.FullVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
