/*
Package server exposes the finding store over a JSON HTTP API.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/internal/version"
	"github.com/anchore/riskboard/riskboard/importer"
	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/ticket"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Address string
	// Clock drives the metrics windows; defaults to time.Now.
	Clock func() time.Time
}

type Server struct {
	address  string
	store    store.Store
	tickets  ticket.Creator
	importer *importer.Importer
	metrics  *metrics.Aggregator
	router   *gin.Engine
}

func New(cfg Config, s store.Store, tickets ticket.Creator) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), actorFromHeader())

	srv := &Server{
		address:  cfg.Address,
		store:    s,
		tickets:  tickets,
		importer: importer.New(s),
		metrics:  metrics.NewAggregator(s, cfg.Clock),
		router:   router,
	}
	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/findings", s.handleListFindings)
		api.POST("/findings", s.handleCreateFinding)
		api.PATCH("/findings/bulk", s.handleBulkUpdate)
		api.POST("/findings/import", s.handleImport)
		api.GET("/findings/:id", s.handleGetFinding)
		api.PATCH("/findings/:id", s.handleUpdateFinding)
		api.DELETE("/findings/:id", s.handleDeleteFinding)
		api.POST("/findings/:id/ticket", s.handleOpenTicket)

		api.GET("/assets", s.handleListAssets)
		api.POST("/assets", s.handleCreateAsset)
		api.GET("/assets/:id", s.handleGetAsset)
		api.PATCH("/assets/:id", s.handleUpdateAsset)
		api.DELETE("/assets/:id", s.handleDeleteAsset)

		api.GET("/metrics", s.handleMetrics)
		api.GET("/activity", s.handleListActivity)
	}
}

// Handler returns the routed API, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()
	log.WithFields("address", s.address).Info("serving API")

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("unable to serve API on %q: %w", s.address, err)
	case <-ctx.Done():
		log.Debug("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.FromBuild().Version,
	})
}
