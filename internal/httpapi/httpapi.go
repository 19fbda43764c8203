// Package httpapi exposes the session orchestrator over HTTP using
// gin. Handlers translate apperr.Kind into the status codes the route
// table specifies and otherwise stay thin: all decision-making lives
// in internal/session.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/negainoido/icfpc2025/internal/apperr"
	"github.com/negainoido/icfpc2025/internal/session"
)

// Server bundles the orchestrator and a logger behind a gin engine.
type Server struct {
	orchestrator *session.Orchestrator
	log          *slog.Logger
	engine       *gin.Engine
}

// New builds a Server with routes registered.
func New(orchestrator *session.Orchestrator, log *slog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{orchestrator: orchestrator, log: log, engine: engine}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, for use with
// http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.POST("/select", s.handleSelect)
	api.POST("/explore", s.handleExplore)
	api.POST("/guess", s.handleGuess)
	api.GET("/sessions", s.handleListSessions)
	api.GET("/sessions/current", s.handleCurrentSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.GET("/sessions/:id/export", s.handleExportSession)
	api.PUT("/sessions/:id/abort", s.handleAbortSession)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// writeError maps an apperr.Kind to an HTTP status code and writes a
// JSON body of {"error": "..."}.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	for _, k := range []apperr.Kind{
		apperr.InputValidation, apperr.Conflict, apperr.NotFound,
		apperr.UpstreamError, apperr.Persistence, apperr.ReconstructorFailure,
		apperr.Invariant,
	} {
		if apperr.Is(err, k) {
			status = statusForKind(k)
			break
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.InputValidation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.UpstreamError:
		return http.StatusBadGateway
	case apperr.Persistence, apperr.Invariant, apperr.ReconstructorFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
