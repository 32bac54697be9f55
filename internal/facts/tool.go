package facts

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/logger"
	"github.com/spigell/hh-twin/internal/profile"
	"github.com/spigell/hh-twin/internal/utils"
)

const (
	// ToolName is the function name agents call to look up candidate facts.
	ToolName = "getCandidateFacts"
	// ToolQueryParam is the only argument of the tool.
	ToolQueryParam = "query"
	// ToolDescription explains the tool to the model.
	ToolDescription = `Get facts about the candidate's resume and previous interviews.
Use it before answering any question about experience, skills or background.
Example queries: "skills", "Python experience", "work history", "summary", "education", "interview insights".`

	defaultMaxLogLength = 120
)

// ProfileSource returns the candidate installed for a session.
type ProfileSource interface {
	Get(sessionID string) *profile.Candidate
}

// Tool binds the resolver to one session of a profile source.
type Tool struct {
	source    ProfileSource
	sessionID string
	logger    *zap.Logger
	maxLogLen int
}

// NewTool binds the resolver to sessionID. Queries are cut to maxLogLength
// runes in logs; a non-positive value falls back to the default.
func NewTool(source ProfileSource, sessionID string, log *zap.Logger, maxLogLength int) *Tool {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Tool{
		source:    source,
		sessionID: sessionID,
		logger:    logger.WithSession(log, sessionID, ""),
		maxLogLen: maxLogLength,
	}
}

// Lookup resolves the query against the current candidate of the session.
func (t *Tool) Lookup(_ context.Context, query string) Answer {
	var c *profile.Candidate
	if t.source != nil {
		c = t.source.Get(t.sessionID)
	}

	rule, answer := resolve(query, c)

	fields := []zap.Field{
		zap.String("query", utils.TruncateForLog(query, t.maxLogLen)),
		zap.String("rule", rule),
		zap.Bool("found", answer.Found),
		zap.Int("facts", len(answer.Facts)),
	}
	if c == nil {
		t.logger.Warn("no candidate data available", fields...)
	} else {
		t.logger.Debug("candidate facts lookup", fields...)
	}

	return answer
}

// QueryFromArgs extracts the query argument of a tool call.
func QueryFromArgs(args map[string]any) string {
	v, ok := args[ToolQueryParam]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
