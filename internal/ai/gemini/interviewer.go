package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-twin/internal/ai"
	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/logger"
	"github.com/spigell/hh-twin/internal/utils"
)

const (
	defaultMaxLogLength = 200
	// maxToolRounds bounds how many times the model may call tools within one turn.
	maxToolRounds = 4
)

// Interviewer answers recruiter questions as the candidate, grounding every
// biographical answer in the facts tool.
type Interviewer struct {
	generator *Generator
	chat      chatSession
	lookup    ai.FactLookup
	logger    *zap.Logger
	maxLogLen int

	mu    sync.Mutex
	usage ai.Usage
}

var _ ai.Interviewer = (*Interviewer)(nil)

// NewInterviewer opens a chat with the persona prompt as system instruction
// and the facts tool declared.
func (g *Generator) NewInterviewer(ctx context.Context, persona string, lookup ai.FactLookup, log *zap.Logger, maxLogLength int) (*Interviewer, error) {
	if lookup == nil {
		return nil, errors.New("fact lookup is required")
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	chat, err := g.startChat(ctx, persona, []*genai.Tool{factsTool()})
	if err != nil {
		return nil, err
	}

	return &Interviewer{
		generator: g,
		chat:      chat,
		lookup:    lookup,
		logger:    logger.WithFields(log, logger.CommonFields("gemini", g.Model())...),
		maxLogLen: maxLogLength,
	}, nil
}

func factsTool() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        facts.ToolName,
			Description: facts.ToolDescription,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					facts.ToolQueryParam: {
						Type:        genai.TypeString,
						Description: `What to look up, e.g. "Python experience", "education", "skills", "summary".`,
					},
				},
				Required: []string{facts.ToolQueryParam},
			},
		}},
	}
}

// Reply sends one recruiter line and returns what the candidate says back.
// Tool calls requested by the model are answered before the final text is returned.
func (i *Interviewer) Reply(ctx context.Context, recruiterLine string) (string, error) {
	recruiterLine = strings.TrimSpace(recruiterLine)
	if recruiterLine == "" {
		return "", errors.New("recruiter line must not be empty")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.logger.Debug("recruiter turn",
		zap.Int("length", utf8.RuneCountInString(recruiterLine)),
		zap.String("preview", utils.TruncateForLog(recruiterLine, i.maxLogLen)),
	)

	parts := []genai.Part{{Text: recruiterLine}}
	for round := 0; round <= maxToolRounds; round++ {
		resp, err := i.generator.send(ctx, i.chat, parts)
		if err != nil {
			return "", err
		}
		i.recordUsage(resp)

		calls := functionCalls(resp)
		if len(calls) == 0 {
			text := responseText(resp)
			if text == "" {
				return "", errors.New("gemini api returned empty response")
			}

			i.logger.Debug("candidate turn",
				zap.Int("tool_rounds", round),
				zap.String("preview", utils.TruncateForLog(text, i.maxLogLen)),
			)
			return text, nil
		}

		parts = i.answerCalls(ctx, calls)
	}

	return "", fmt.Errorf("model requested tools more than %d times in one turn", maxToolRounds)
}

// Usage returns the tokens spent so far.
func (i *Interviewer) Usage() ai.Usage {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.usage
}

func (i *Interviewer) answerCalls(ctx context.Context, calls []*genai.FunctionCall) []genai.Part {
	parts := make([]genai.Part, 0, len(calls))
	for _, call := range calls {
		var response map[string]any
		if call.Name == facts.ToolName {
			query := facts.QueryFromArgs(call.Args)
			response = i.lookup.Lookup(ctx, query).Map()
		} else {
			i.logger.Warn("model called unknown tool", zap.String("tool", call.Name))
			response = map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
		}

		parts = append(parts, genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: response,
			},
		})
	}
	return parts
}

func (i *Interviewer) recordUsage(resp *genai.GenerateContentResponse) {
	u := ai.Usage{Requests: 1}
	if resp != nil && resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CandidatesTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	i.usage.Add(u)
}

func functionCalls(resp *genai.GenerateContentResponse) []*genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}

	var calls []*genai.FunctionCall
	for _, part := range candidate.Content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate is spoken.
		break
	}

	return strings.TrimSpace(builder.String())
}
