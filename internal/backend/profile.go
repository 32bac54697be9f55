package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/profile"
)

// ErrNoProfile means the backend answered 200 without a profile object.
var ErrNoProfile = errors.New("response has no profile")

type profileResponse struct {
	Profile map[string]any `json:"profile"`
}

// FetchProfile loads the candidate profile with the given id.
func (c *Client) FetchProfile(ctx context.Context, candidateID string) (*profile.Candidate, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, errors.New("candidate id is required")
	}

	endpoint := c.BaseURL + profilePath + url.PathEscape(candidateID)

	var resp profileResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch candidate profile %q: %w", candidateID, err)
	}

	if resp.Profile == nil {
		return nil, fmt.Errorf("fetch candidate profile %q: %w", candidateID, ErrNoProfile)
	}

	candidate, err := profile.Decode(resp.Profile)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate profile %q: %w", candidateID, err)
	}

	c.logger.Debug("fetched candidate profile",
		zap.String("candidate_id", candidateID),
		zap.Int("skills", len(candidate.Skills)),
		zap.Int("experiences", len(candidate.Experiences)),
		zap.Int("interview_briefs", len(candidate.InterviewBriefs)),
		zap.Int("interview_insights", len(candidate.InterviewInsights)),
	)

	return candidate, nil
}
