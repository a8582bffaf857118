package statusserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clinicore/intake-ocr/internal/store"
	"github.com/clinicore/intake-ocr/pkg/log"
	"github.com/clinicore/intake-ocr/pkg/metrics"
)

const gracefulShutdownTimeout = 5 * time.Second

// StatusServer exposes the worker's health, prometheus metrics, and
// read-only queue visibility. Document outcomes themselves are observed
// through the record store.
type StatusServer struct {
	bindAddress string
	httpServer  *http.Server
	listener    net.Listener
}

func New(logger *zap.Logger, bindAddress string, listener net.Listener, st store.Store) *StatusServer {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(log.Logger(logger, "status_server"))

	metricsMiddleware := metrics.NewMiddleware("intake_ocr")
	metricsMiddleware.MustRegisterDefault()
	router.Use(metricsMiddleware.Handler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	jobs := &jobsHandler{store: st}
	jobs.routes(router)

	return &StatusServer{
		bindAddress: bindAddress,
		listener:    listener,
		httpServer: &http.Server{
			Addr:    bindAddress,
			Handler: router,
		},
	}
}

func (s *StatusServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		s.httpServer.SetKeepAlivesEnabled(false)
		_ = s.httpServer.Shutdown(ctxTimeout)
		zap.S().Named("status_server").Info("status server terminated")
	}()

	zap.S().Named("status_server").Infof("serving status endpoints: %s", s.bindAddress)
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
