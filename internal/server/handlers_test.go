package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MayuCoding/DebateAgent/config"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
)

func TestBearerAuth(t *testing.T) {
	e := echo.New()
	g := e.Group("/api")
	g.Use(bearerAuth("secret-token"))
	g.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Basic secret-token", http.StatusUnauthorized},
		{"Bearer secret-token", http.StatusOK},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		if c.header != "" {
			req.Header.Set(echo.HeaderAuthorization, c.header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Fatalf("header %q: expected %d, got %d", c.header, c.want, rec.Code)
		}
	}
}

func TestStatsReportsRecordedRuns(t *testing.T) {
	tele := telemetry.NewTelemetry(config.TelemetryConfig{Enabled: true, CostTracking: true})
	ctx := context.Background()
	tele.RecordStageEvent(ctx, telemetry.StageEvent{
		Stage:      "understand",
		Duration:   50 * time.Millisecond,
		Success:    true,
		Cost:       0.02,
		TokensUsed: 120,
		ModelUsed:  "counter-large",
	})
	tele.RecordRunEvent(ctx, telemetry.RunEvent{
		ID:             "run-1",
		Format:         "points",
		Success:        true,
		ProcessingTime: 200 * time.Millisecond,
		Cost:           0.05,
		TokensUsed:     300,
	})

	e := echo.New()
	h := &CounterHandler{Tele: tele, Logger: log.New(io.Discard, "", 0)}
	h.Register(e.Group("/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.Metrics.TotalRuns != 1 || stats.Metrics.SuccessfulRuns != 1 {
		t.Fatalf("run counters wrong: %+v", stats.Metrics)
	}
	if stats.Metrics.StageExecutions["understand"] != 1 {
		t.Fatalf("stage executions wrong: %+v", stats.Metrics.StageExecutions)
	}
	if stats.Costs.TotalCost != 0.05 || stats.Costs.TotalTokens != 300 {
		t.Fatalf("cost totals wrong: %+v", stats.Costs)
	}
	if stats.Costs.StageCosts["understand"] != 0.02 {
		t.Fatalf("stage costs wrong: %+v", stats.Costs.StageCosts)
	}
}

func TestCounterRejectsMalformedSubmission(t *testing.T) {
	e := echo.New()
	h := &CounterHandler{Logger: log.New(io.Discard, "", 0)}
	h.Register(e.Group("/api"))

	cases := []string{
		`{"motion": "m", "side": "maybe", "format": "points", "argument": "a"}`,
		`{"motion": "m", "side": "pro", "format": "essay", "argument": "a"}`,
		`{"motion": "", "side": "pro", "format": "points", "argument": "a"}`,
		`{"motion": "m", "side": "pro", "format": "points", "argument": ""}`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/counter", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}
