package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type selectRequest struct {
	ProblemName string `json:"problemName" binding:"required"`
	UserName    string `json:"user_name"`
	Enqueue     bool   `json:"enqueue"`
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.orchestrator.Select(c.Request.Context(), req.ProblemName, req.UserName, req.Enqueue)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":  res.SessionID,
		"problemName": nullableString(res.ProblemName),
		"status":      res.Status,
	})
}

type exploreRequest struct {
	SessionID string   `json:"session_id"`
	UserName  string   `json:"user_name"`
	Plans     []string `json:"plans" binding:"required"`
}

func (s *Server) handleExplore(c *gin.Context) {
	var req exploreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.orchestrator.Explore(c.Request.Context(), req.SessionID, req.UserName, req.Plans)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": res.SessionID,
		"results":    res.Results,
		"queryCount": res.QueryCount,
	})
}

type guessRequest struct {
	SessionID string          `json:"session_id"`
	UserName  string          `json:"user_name"`
	Map       json.RawMessage `json:"map" binding:"required"`
}

func (s *Server) handleGuess(c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.orchestrator.Guess(c.Request.Context(), req.SessionID, req.UserName, req.Map)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": res.SessionID,
		"correct":    res.Correct,
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.orchestrator.ListSessions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleCurrentSession(c *gin.Context) {
	sess, err := s.orchestrator.GetCurrentActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleGetSession(c *gin.Context) {
	detail, err := s.orchestrator.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleExportSession(c *gin.Context) {
	data, err := s.orchestrator.ExportSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleAbortSession(c *gin.Context) {
	if err := s.orchestrator.Abort(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
