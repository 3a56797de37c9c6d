package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MayuCoding/DebateAgent/internal/agent/core"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
)

// CounterHandler exposes the counter-argument pipeline over HTTP
type CounterHandler struct {
	Agent  *core.Agent
	Tele   *telemetry.Telemetry
	Logger *log.Logger
}

// CounterRequest is the POST /api/counter payload
type CounterRequest struct {
	Motion   string `json:"motion"`
	Side     string `json:"side"`
	Format   string `json:"format"`
	Argument string `json:"argument"`
}

// CounterResponse is the successful counter generation result
type CounterResponse struct {
	RunID      string        `json:"run_id"`
	Format     string        `json:"format"`
	Response   core.Response `json:"response"`
	Rendered   string        `json:"rendered"`
	Cost       float64       `json:"cost"`
	TokensUsed int64         `json:"tokens_used"`
}

// StatsResponse is the aggregated telemetry snapshot
type StatsResponse struct {
	Metrics telemetry.Metrics     `json:"metrics"`
	Costs   telemetry.CostTracker `json:"costs"`
}

// RunResponse is the stored-run lookup result
type RunResponse struct {
	RunID      string          `json:"run_id"`
	Submission core.Submission `json:"submission"`
	Format     string          `json:"format"`
	Rendered   string          `json:"rendered"`
	Cost       float64         `json:"cost"`
	TokensUsed int64           `json:"tokens_used"`
}

func (h *CounterHandler) Register(g *echo.Group) {
	g.POST("/counter", h.counter)
	g.GET("/runs/:id", h.run)
	g.GET("/stats", h.stats)
}

func (h *CounterHandler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, StatsResponse{
		Metrics: h.Tele.GetMetrics(),
		Costs:   h.Tele.GetCosts(),
	})
}

func (h *CounterHandler) counter(c echo.Context) error {
	var req CounterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	side, err := core.ParseSide(req.Side)
	if err != nil {
		countRun("rejected")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	format, err := core.ParseFormat(req.Format)
	if err != nil {
		countRun("rejected")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub := core.Submission{
		Motion:          strings.TrimSpace(req.Motion),
		StudentSide:     side,
		ArgumentText:    strings.TrimSpace(req.Argument),
		RequestedFormat: format,
	}
	if err := sub.Validate(); err != nil {
		countRun("rejected")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.Agent.GenerateCounter(c.Request().Context(), sub)
	if err != nil {
		h.Logger.Printf("counter generation failed: %v", err)
		countRun("failed")
		if errors.Is(err, core.ErrNoEvidence) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	countRun("ok")
	return c.JSON(http.StatusOK, CounterResponse{
		RunID:      result.ID,
		Format:     string(result.Response.Format()),
		Response:   result.Response,
		Rendered:   result.Rendered,
		Cost:       result.Cost,
		TokensUsed: result.TokensUsed,
	})
}

func (h *CounterHandler) run(c echo.Context) error {
	id := c.Param("id")
	rec, err := h.Agent.Storage().GetRun(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrRunNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "run not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, RunResponse{
		RunID:      rec.ID,
		Submission: rec.Submission,
		Format:     string(rec.Format),
		Rendered:   rec.Rendered,
		Cost:       rec.Cost,
		TokensUsed: rec.TokensUsed,
	})
}
