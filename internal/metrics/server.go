package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/config"
	"github.com/Missray24/missray-cab-app-sub000/internal/log"
)

// Server exposes the Prometheus registry on its own listener, separate from
// the API port so scrapes are not mixed with client traffic.
type Server struct {
	server *http.Server
}

// NewServer builds the scrape listener. Timeouts come from the metrics
// configuration; zero values leave them unset.
func NewServer(cfg config.MetricsConfig) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      mux,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		},
	}
}

// Start serves scrapes until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	log.Info(ctx, "Metrics listener up", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}

// Shutdown stops the listener, letting in-flight scrapes finish.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info(ctx, "Stopping metrics listener")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics listener shutdown: %w", err)
	}
	return nil
}
