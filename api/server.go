// Package api exposes the running simulation over HTTP for inspection and
// manual stepping.
package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetlab/dispatchsim/core/logger"
	"github.com/fleetlab/dispatchsim/core/sim"
)

// Simulation is the view of the running service the API serves.
// Implementations must be safe for concurrent use.
type Simulation interface {
	Snapshot() sim.Snapshot
	Step(n int) ([]sim.TickReport, error)
}

// Server serves read endpoints over the simulation plus a manual step
// endpoint for externally paced runs.
type Server struct {
	engine *gin.Engine
	sim    Simulation
	log    logger.Logger
}

// NewServer wires the routes. A nil logger falls back to a no-op.
func NewServer(s Simulation, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop{}
	}
	if os.Getenv("APP_ENV") != "dev" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	srv := &Server{engine: engine, sim: s, log: log}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	api := s.engine.Group("/api")
	{
		api.GET("/snapshot", s.snapshot)
		api.GET("/drivers", s.drivers)
		api.GET("/requests", s.requests)
		api.POST("/step", s.step)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve runs the server on addr until ctx is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("api server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
