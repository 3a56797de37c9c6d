package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MayuCoding/DebateAgent/config"
	"github.com/MayuCoding/DebateAgent/internal/agent/core"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
)

// Run starts the HTTP API. addr overrides server.addr when non-empty.
func Run(addr string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	tele := telemetry.NewTelemetry(cfg.Telemetry)
	agentLogger := log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	agent, err := core.NewAgent(cfg, agentLogger, tele)
	if err != nil {
		return err
	}
	defer agent.Close()

	api := e.Group("/api")
	if cfg.Server.APIToken != "" {
		api.Use(bearerAuth(cfg.Server.APIToken))
	}

	ch := &CounterHandler{Agent: agent, Tele: tele, Logger: log.New(log.Writer(), "[COUNTER] ", log.LstdFlags)}
	ch.Register(api)

	addr = normalizeAddr(addr, cfg.Server.Addr)
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// normalizeAddr resolves the listen address from the flag and config, adding
// a leading colon only to bare port numbers. Host-qualified addresses like
// "localhost:8080" pass through untouched.
func normalizeAddr(addr, cfgAddr string) string {
	if addr == "" {
		addr = cfgAddr
	}
	if addr == "" {
		return ":8080"
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

// bearerAuth enforces a static API token on the /api group
func bearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			const scheme = "Bearer "
			if len(auth) <= len(scheme) || auth[:len(scheme)] != scheme {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if auth[len(scheme):] != token {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}
