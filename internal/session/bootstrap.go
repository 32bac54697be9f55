package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/logger"
	"github.com/spigell/hh-twin/internal/profile"
)

const defaultFetchTimeout = 10 * time.Second

// ProfileFetcher loads a candidate profile from the backend.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, candidateID string) (*profile.Candidate, error)
}

// Session is the state an interview starts with.
type Session struct {
	ID        string
	Metadata  Metadata
	Candidate *profile.Candidate
	Prompt    string
}

// Grounded reports whether facts can be answered from a real profile.
func (s *Session) Grounded() bool {
	return s != nil && s.Candidate != nil
}

// Bootstrapper prepares sessions: it loads the candidate and installs it into the store.
type Bootstrapper struct {
	fetcher      ProfileFetcher
	store        *profile.Store
	logger       *zap.Logger
	fetchTimeout time.Duration
}

// NewBootstrapper creates a bootstrapper. A non-positive timeout falls back to 10s.
func NewBootstrapper(fetcher ProfileFetcher, store *profile.Store, log *zap.Logger, fetchTimeout time.Duration) *Bootstrapper {
	if log == nil {
		log = zap.NewNop()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &Bootstrapper{
		fetcher:      fetcher,
		store:        store,
		logger:       log,
		fetchTimeout: fetchTimeout,
	}
}

// Store returns the profile store sessions are installed into.
func (b *Bootstrapper) Store() *profile.Store {
	return b.store
}

// Start prepares a session. Fetch failures are logged and the session starts
// without a candidate, so the agent can still talk but has no facts.
func (b *Bootstrapper) Start(ctx context.Context, sessionID string, meta Metadata) *Session {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log := logger.WithSession(b.logger, sessionID, meta.CandidateID)

	candidate := b.fetch(ctx, log, meta.CandidateID)
	b.store.Set(sessionID, candidate)

	if candidate != nil {
		log.Info("candidate profile installed",
			zap.String("candidate_name", candidate.FullName),
			zap.Int("interview_briefs", len(candidate.InterviewBriefs)),
		)
	}

	return &Session{
		ID:        sessionID,
		Metadata:  meta,
		Candidate: candidate,
		Prompt:    BuildPrompt(candidate, meta),
	}
}

// Finish forgets the session profile.
func (b *Bootstrapper) Finish(sessionID string) {
	b.store.Delete(sessionID)
	logger.WithSession(b.logger, sessionID, "").Debug("session finished")
}

func (b *Bootstrapper) fetch(ctx context.Context, log *zap.Logger, candidateID string) *profile.Candidate {
	if candidateID == "" {
		log.Warn("no candidate_id provided in metadata")
		return nil
	}

	if b.fetcher == nil {
		log.Error("no profile backend configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()

	candidate, err := b.fetcher.FetchProfile(ctx, candidateID)
	if err != nil {
		log.Error("failed to fetch candidate data", zap.Error(err))
		return nil
	}
	if candidate == nil {
		log.Error("backend returned an empty candidate")
		return nil
	}

	if len(candidate.InterviewInsights) > 0 {
		log.Info("found previous interview sessions", zap.Int("count", len(candidate.InterviewInsights)))
		candidate.InterviewBriefs = candidate.InterviewInsights
	}

	return candidate
}
