package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/session"
)

// Server exposes the facts tool to an external media framework. Each room
// creates a session once and then calls the facts endpoint per tool call.
type Server struct {
	bootstrapper *session.Bootstrapper
	logger       *zap.Logger
	maxLogLen    int
	engine       *gin.Engine
}

// New builds the server. maxLogLength bounds logged fact queries.
func New(bootstrapper *session.Bootstrapper, logger *zap.Logger, maxLogLength int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		bootstrapper: bootstrapper,
		logger:       logger,
		maxLogLen:    maxLogLength,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))

	v1 := r.Group("/v1")
	v1.GET("/health", func(c *gin.Context) {
		success(c, http.StatusOK, "ok", nil)
	})

	sessions := v1.Group("/sessions")
	{
		sessions.POST("", s.createSession)
		sessions.GET("/:id", s.getSession)
		sessions.POST("/:id/facts", s.lookupFacts)
		sessions.DELETE("/:id", s.finishSession)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
	// Metadata is either an object or the raw JSON string the media framework delivers.
	Metadata json.RawMessage `json:"metadata"`
}

type sessionView struct {
	SessionID      string `json:"session_id"`
	CandidateFound bool   `json:"candidate_found"`
	CandidateName  string `json:"candidate_name,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
	Greeting       string `json:"greeting,omitempty"`
}

type factsRequest struct {
	Query *string `json:"query"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		failure(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	meta, err := parseMetadata(req.Metadata)
	if err != nil {
		s.logger.Warn("failed to parse session metadata", zap.Error(err))
	}

	sess := s.bootstrapper.Start(c.Request.Context(), req.SessionID, meta)

	view := sessionView{
		SessionID:      sess.ID,
		CandidateFound: sess.Grounded(),
		Prompt:         sess.Prompt,
		Greeting:       session.Greeting,
	}
	if sess.Candidate != nil {
		view.CandidateName = sess.Candidate.FullName
	}

	success(c, http.StatusCreated, "session started", view)
}

func (s *Server) getSession(c *gin.Context) {
	id := c.Param("id")
	store := s.bootstrapper.Store()
	if !store.Has(id) {
		failure(c, http.StatusNotFound, "session not found", nil)
		return
	}

	view := sessionView{SessionID: id}
	if candidate := store.Get(id); candidate != nil {
		view.CandidateFound = true
		view.CandidateName = candidate.FullName
	}

	success(c, http.StatusOK, "session", view)
}

func (s *Server) lookupFacts(c *gin.Context) {
	var req factsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		failure(c, http.StatusBadRequest, "query is required", nil)
		return
	}

	tool := facts.NewTool(s.bootstrapper.Store(), c.Param("id"), s.logger, s.maxLogLen)
	answer := tool.Lookup(c.Request.Context(), *req.Query)

	success(c, http.StatusOK, "candidate facts", answer)
}

func (s *Server) finishSession(c *gin.Context) {
	s.bootstrapper.Finish(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func parseMetadata(raw json.RawMessage) (session.Metadata, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return session.Metadata{}, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return session.Metadata{}, fmt.Errorf("parse session metadata: %w", err)
		}
		return session.ParseMetadata(encoded)
	}

	return session.ParseMetadata(trimmed)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
