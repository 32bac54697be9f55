package ai

import (
	"context"

	"github.com/spigell/hh-twin/internal/facts"
)

// FactLookup answers the agent's fact queries for one session.
type FactLookup interface {
	Lookup(ctx context.Context, query string) facts.Answer
}

// Usage is the token consumption of a conversation.
type Usage struct {
	Requests         int
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}

// Add accumulates another usage report.
func (u *Usage) Add(other Usage) {
	u.Requests += other.Requests
	u.PromptTokens += other.PromptTokens
	u.CandidatesTokens += other.CandidatesTokens
	u.TotalTokens += other.TotalTokens
}

// Interviewer speaks as the candidate, one recruiter turn at a time.
type Interviewer interface {
	Reply(ctx context.Context, recruiterLine string) (string, error)
	Usage() Usage
}
