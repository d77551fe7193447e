package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/sim"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequestsResponse groups open requests by trip leg.
type RequestsResponse struct {
	Pending   []sim.RequestView `json:"pending"`
	InTransit []sim.TransitView `json:"in_transit"`
}

// StepRequest is the body for POST /api/step. Ticks defaults to 1.
type StepRequest struct {
	Ticks int `json:"ticks"`
}

// StepResponse reports the ticks executed and the resulting simulation time.
type StepResponse struct {
	Executed int   `json:"executed"`
	Time     int64 `json:"time"`
}

// maxStepTicks bounds a single step call so a typo cannot stall the server.
const maxStepTicks = 10000

func respondError(c *gin.Context, err error) {
	c.JSON(mapErrorToHTTPStatus(err), ErrorResponse{Error: err.Error()})
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// health handles GET /healthz
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// snapshot handles GET /api/snapshot
func (s *Server) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Snapshot())
}

// drivers handles GET /api/drivers
func (s *Server) drivers(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Snapshot().Drivers)
}

// requests handles GET /api/requests?status=
func (s *Server) requests(c *gin.Context) {
	snap := s.sim.Snapshot()
	resp := RequestsResponse{Pending: snap.Pending, InTransit: snap.InTransit}
	switch status := c.Query("status"); status {
	case "":
	case "waiting", "assigned":
		filtered := make([]sim.RequestView, 0, len(resp.Pending))
		for _, r := range resp.Pending {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		resp.Pending = filtered
		resp.InTransit = []sim.TransitView{}
	case "picked_up":
		resp.Pending = []sim.RequestView{}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown status %q", status)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// step handles POST /api/step
func (s *Server) step(c *gin.Context) {
	req := StepRequest{Ticks: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
		if req.Ticks == 0 {
			req.Ticks = 1
		}
	}
	if req.Ticks < 1 || req.Ticks > maxStepTicks {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("ticks must be between 1 and %d", maxStepTicks)})
		return
	}
	reports, err := s.sim.Step(req.Ticks)
	if err != nil {
		s.log.Errorf("manual step failed: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StepResponse{Executed: len(reports), Time: s.sim.Snapshot().Time})
}
