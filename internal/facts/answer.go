package facts

// Answer is what the agent receives for a single fact lookup.
// When Found is false Facts holds one sentence the agent can say instead.
type Answer struct {
	Found bool  `json:"found"`
	Facts []any `json:"facts"`
}

// SessionBrief wraps a free-text brief from a previous interview.
type SessionBrief struct {
	Session string `json:"session"`
	Brief   any    `json:"brief"`
}

type Achievements struct {
	Achievements any `json:"achievements"`
}

type ExperienceFact struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

// InterviewContext is a brief that matched query terms outside any known category.
type InterviewContext struct {
	FromInterview string `json:"from_interview"`
	Context       any    `json:"context"`
}

const (
	msgNoCandidate       = "Candidate data not available"
	msgNoInsights        = "No previous interview insights available"
	msgNoSkills          = "No skills information available"
	msgNoEducation       = "Education information not available in current profile"
	msgNoExperience      = "No experience information available"
	msgNoCurrentPosition = "Current position information not available"
	msgNoLocation        = "Location information not available"
	msgNotFound          = "I couldn't find information about that specific query"
)

func found(facts ...any) Answer {
	return Answer{Found: true, Facts: facts}
}

func unavailable(reason string) Answer {
	return Answer{Found: false, Facts: []any{reason}}
}

// Map renders the answer as a generic object for tool transports that expect one.
func (a Answer) Map() map[string]any {
	facts := a.Facts
	if facts == nil {
		facts = []any{}
	}
	return map[string]any{
		"found": a.Found,
		"facts": facts,
	}
}
