// Package web exposes the period aggregations over a JSON API with
// spreadsheet downloads.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sitehours/aggregate"
	"sitehours/period"
	sitehoursmiddleware "sitehours/web/middleware"
)

type WorkerPeriodService interface {
	Aggregate(ctx context.Context, workerID string, start, end period.Date) (aggregate.WorkerPeriod, error)
}

type SitePeriodService interface {
	Aggregate(ctx context.Context, siteID string, start, end period.Date) (aggregate.SiteReport, error)
}

type Dependencies struct {
	Workers WorkerPeriodService
	Sites   SitePeriodService
	// Location interprets the start/end query parameters.
	Location *time.Location
}

type Server struct {
	router   *chi.Mux
	workers  WorkerPeriodService
	sites    SitePeriodService
	location *time.Location
}

func NewServer(logger zerolog.Logger, deps Dependencies) *Server {
	location := deps.Location
	if location == nil {
		location = time.Local
	}

	server := &Server{
		workers:  deps.Workers,
		sites:    deps.Sites,
		location: location,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(sitehoursmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", server.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/workers/{workerID}/period", server.handleWorkerPeriod)
		r.Get("/workers/{workerID}/period/export", server.handleWorkerPeriodExport)
		r.Get("/objects/{siteID}/period", server.handleSitePeriod)
		r.Get("/objects/{siteID}/period/export", server.handleSitePeriodExport)
	})
	server.router = router

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

// Run serves handler on addr until ctx is canceled, then drains in-flight
// requests for at most shutdownTimeout.
func Run(ctx context.Context, logger zerolog.Logger, addr string, shutdownTimeout time.Duration, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			err = server.Close()
		}
		return err
	}
}
