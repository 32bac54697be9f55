package facts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/hh-twin/internal/profile"
)

// Rule names, in evaluation order.
const (
	RuleNoCandidate     = "no_candidate"
	RuleInterview       = "interview"
	RuleSummary         = "summary"
	RuleSkills          = "skills"
	RuleSpecificSkill   = "specific_skill"
	RuleEducation       = "education"
	RuleExperience      = "experience"
	RuleCurrentPosition = "current_position"
	RuleLocation        = "location"
	RuleName            = "name"
	RuleFallback        = "fallback"
)

type rule struct {
	name   string
	match  func(query string, c *profile.Candidate) bool
	answer func(query string, c *profile.Candidate) Answer
}

// rules are evaluated top to bottom and the first match wins. Keywords
// overlap (a "skills insight" query hits the interview rule, "where did you
// work" hits the experience rule), so the order is part of the behaviour.
var rules = []rule{
	{name: RuleInterview, match: containsAny("interview", "brief", "insight", "work style", "collaboration", "career goal", "aspiration"), answer: answerInterview},
	{name: RuleSummary, match: containsAny("summary", "about"), answer: answerSummary},
	{name: RuleSkills, match: containsAny("skill"), answer: answerSkills},
	{name: RuleSpecificSkill, match: mentionsSkill, answer: answerSpecificSkill},
	{name: RuleEducation, match: containsAny("education", "degree", "university"), answer: answerEducation},
	{name: RuleExperience, match: containsAny("experience", "work", "job", "employment"), answer: answerExperience},
	{name: RuleCurrentPosition, match: containsAny("current", "present"), answer: answerCurrentPosition},
	{name: RuleLocation, match: containsAny("location", "where"), answer: answerLocation},
	{name: RuleName, match: containsAny("name", "who"), answer: answerName},
}

// Resolve maps a free-text query to facts from the candidate profile.
// A nil candidate always yields the "not available" answer.
func Resolve(query string, c *profile.Candidate) Answer {
	_, answer := resolve(query, c)
	return answer
}

// Classify returns the name of the rule Resolve would apply.
func Classify(query string, c *profile.Candidate) string {
	name, _ := resolve(query, c)
	return name
}

func resolve(query string, c *profile.Candidate) (string, Answer) {
	if c == nil {
		return RuleNoCandidate, unavailable(msgNoCandidate)
	}

	q := strings.ToLower(query)
	for _, r := range rules {
		if r.match(q, c) {
			return r.name, r.answer(q, c)
		}
	}
	return RuleFallback, answerFromBriefs(q, c)
}

func containsAny(keywords ...string) func(string, *profile.Candidate) bool {
	return func(q string, _ *profile.Candidate) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
}

// mentionsSkill matches when a skill name appears inside the query.
// Nameless skills never match.
func mentionsSkill(q string, c *profile.Candidate) bool {
	for _, s := range c.Skills {
		if skillMentioned(q, s) {
			return true
		}
	}
	return false
}

func skillMentioned(q string, s profile.Skill) bool {
	name := strings.ToLower(strings.TrimSpace(s.Name))
	return name != "" && strings.Contains(q, name)
}

func answerInterview(q string, c *profile.Candidate) Answer {
	withAchievements := strings.Contains(q, "achievement")

	var insights []any
	for _, session := range c.InterviewBriefs {
		if session.HasBrief() {
			if brief, ok := session.InterviewBrief.(map[string]any); ok {
				insights = append(insights, brief)
			} else {
				insights = append(insights, SessionBrief{Session: session.Label(), Brief: session.InterviewBrief})
			}
		}

		if withAchievements && !profile.IsBlank(session.Achievements) {
			insights = append(insights, Achievements{Achievements: session.Achievements})
		}
	}

	if len(insights) == 0 {
		return unavailable(msgNoInsights)
	}
	return found(insights...)
}

func answerSummary(_ string, c *profile.Candidate) Answer {
	if strings.TrimSpace(c.ProfessionalSummary) != "" {
		return found(c.ProfessionalSummary)
	}

	return found(fmt.Sprintf("%s is a %s with %s years of experience.",
		orDefault(c.FullName, "Candidate"),
		orDefault(c.JobTitle, "professional"),
		orDefault(c.TotalExperience, "several"),
	))
}

func answerSkills(_ string, c *profile.Candidate) Answer {
	names := make([]any, 0, len(c.Skills))
	for _, s := range c.Skills {
		if name := strings.TrimSpace(s.Name); name != "" {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return unavailable(msgNoSkills)
	}
	return found(names...)
}

func answerSpecificSkill(q string, c *profile.Candidate) Answer {
	var matched []any
	for _, s := range c.Skills {
		if !skillMentioned(q, s) {
			continue
		}

		info := fmt.Sprintf("%s - %s years experience", s.Name, formatYears(s.YearsOfExp))
		if s.LastUsed != "" {
			info += ", last used: " + s.LastUsed
		}
		matched = append(matched, info)
	}

	// mentionsSkill and skillMentioned share the predicate, so this only
	// guards against a rule being reached without a match.
	if len(matched) == 0 {
		return unavailable(msgNoSkills)
	}
	return found(matched...)
}

func answerEducation(string, *profile.Candidate) Answer {
	return unavailable(msgNoEducation)
}

func answerExperience(_ string, c *profile.Candidate) Answer {
	if len(c.Experiences) == 0 {
		return unavailable(msgNoExperience)
	}

	list := make([]any, 0, len(c.Experiences))
	for _, exp := range c.Experiences {
		end := exp.EndDate
		if exp.IsCurrentRole {
			end = "Present"
		}

		list = append(list, ExperienceFact{
			Company:     orDefault(exp.Company, "Unknown"),
			Role:        orDefault(exp.JobTitle, "Unknown"),
			Dates:       fmt.Sprintf("%s - %s", exp.StartDate, end),
			Description: exp.Description,
		})
	}
	return found(list...)
}

func answerCurrentPosition(_ string, c *profile.Candidate) Answer {
	if c.CurrentCompany == "" && c.JobTitle == "" {
		return unavailable(msgNoCurrentPosition)
	}
	return found(fmt.Sprintf("Currently %s at %s", c.JobTitle, c.CurrentCompany))
}

func answerLocation(_ string, c *profile.Candidate) Answer {
	parts := make([]string, 0, 2)
	for _, p := range []string{c.Location, c.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return unavailable(msgNoLocation)
	}
	return found(strings.Join(parts, ", "))
}

func answerName(_ string, c *profile.Candidate) Answer {
	return found("The candidate is " + orDefault(c.FullName, "Unknown"))
}

// answerFromBriefs looks for any query term inside previous interview briefs.
func answerFromBriefs(q string, c *profile.Candidate) Answer {
	terms := strings.Fields(q)

	var matched []any
	for _, session := range c.InterviewBriefs {
		if !session.HasBrief() {
			continue
		}

		brief := strings.ToLower(session.BriefText())
		for _, term := range terms {
			if strings.Contains(brief, term) {
				matched = append(matched, InterviewContext{
					FromInterview: session.Label(),
					Context:       session.InterviewBrief,
				})
				break
			}
		}
	}

	if len(matched) == 0 {
		return unavailable(msgNotFound)
	}
	return found(matched...)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
