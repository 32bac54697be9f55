package session

import (
	_ "embed"
	"strings"

	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/profile"
)

//go:embed persona.md
var personaTemplate string

// Greeting is said once the agent has joined the session.
const Greeting = "Hello! I'm here for our interview. I'm excited to discuss my background and experience. What would you like to know about my professional journey?"

const genericCandidateName = "the candidate"

// BuildPrompt renders the persona instructions for the agent. A nil candidate
// produces a generic persona that still relies on the facts tool.
func BuildPrompt(c *profile.Candidate, meta Metadata) string {
	meta = meta.WithDefaults()

	name := genericCandidateName
	if c != nil {
		name = orDefault(c.FullName, genericCandidateName)
	}

	template := personaTemplate
	if strings.TrimSpace(template) == "" {
		template = "You are {{CANDIDATE_NAME}} interviewing with {{RECRUITER_NAME}} at {{COMPANY}} for {{JOB_TITLE}}. Always call {{TOOL_NAME}} before answering questions about your background and never invent facts."
	}

	replacer := strings.NewReplacer(
		"{{CANDIDATE_NAME}}", name,
		"{{RECRUITER_NAME}}", meta.RecruiterName,
		"{{RECRUITER_TITLE}}", meta.RecruiterTitle,
		"{{COMPANY}}", meta.Company,
		"{{JOB_TITLE}}", meta.JobTitle,
		"{{JOB_DESCRIPTION}}", meta.JobDescription,
		"{{TOOL_NAME}}", facts.ToolName,
	)

	return strings.TrimSpace(replacer.Replace(template))
}
