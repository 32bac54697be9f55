package gemini

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/profile"
)

type recordingLookup struct {
	queries []string
	answer  facts.Answer
}

func (r *recordingLookup) Lookup(_ context.Context, query string) facts.Answer {
	r.queries = append(r.queries, query)
	return r.answer
}

func functionCallResponse(calls ...*genai.FunctionCall) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, &genai.Part{FunctionCall: call})
	}
	return &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 2, TotalTokenCount: 12},
	}
}

func TestInterviewerAnswersToolCallsBeforeReplying(t *testing.T) {
	chat := &fakeChat{}
	chat.enqueue(functionCallResponse(&genai.FunctionCall{
		ID:   "call-1",
		Name: facts.ToolName,
		Args: map[string]any{"query": "Python experience"},
	}), nil)
	final := textResponse("I've used Python for five years, most recently in 2024.")
	final.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 30, CandidatesTokenCount: 12, TotalTokenCount: 42}
	chat.enqueue(final, nil)

	lookup := &recordingLookup{answer: facts.Answer{Found: true, Facts: []any{"Python - 5 years experience, last used: 2024"}}}

	g, _ := newTestGenerator(chat, 1)
	interviewer, err := g.NewInterviewer(context.Background(), "persona", lookup, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := interviewer.Reply(context.Background(), "How much Python have you written?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(reply, "five years") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(lookup.queries) != 1 || lookup.queries[0] != "Python experience" {
		t.Fatalf("unexpected lookups: %v", lookup.queries)
	}

	if len(chat.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(chat.sent))
	}

	if got := chat.sent[0][0].Text; got != "How much Python have you written?" {
		t.Fatalf("unexpected first message: %q", got)
	}

	toolReply := chat.sent[1]
	if len(toolReply) != 1 || toolReply[0].FunctionResponse == nil {
		t.Fatalf("expected a function response, got %+v", toolReply)
	}

	fr := toolReply[0].FunctionResponse
	if fr.ID != "call-1" || fr.Name != facts.ToolName {
		t.Fatalf("unexpected function response identity: %+v", fr)
	}
	if fr.Response["found"] != true {
		t.Fatalf("expected found=true in response, got %v", fr.Response)
	}

	usage := interviewer.Usage()
	if usage.Requests != 2 || usage.TotalTokens != 54 || usage.PromptTokens != 40 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestInterviewerGroundsAgainstRealResolver(t *testing.T) {
	chat := &fakeChat{}
	chat.enqueue(functionCallResponse(&genai.FunctionCall{Name: facts.ToolName, Args: map[string]any{"query": "education"}}), nil)
	chat.enqueue(textResponse("I don't have that information in my profile."), nil)

	store := profile.NewStore()
	store.Set("room", &profile.Candidate{FullName: "Jane"})

	g, _ := newTestGenerator(chat, 1)
	interviewer, err := g.NewInterviewer(context.Background(), "persona", facts.NewTool(store, "room", zap.NewNop(), 0), nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := interviewer.Reply(context.Background(), "Where did you study?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := chat.sent[1][0].FunctionResponse.Response
	if resp["found"] != false {
		t.Fatalf("expected found=false, got %v", resp)
	}
	list, ok := resp["facts"].([]any)
	if !ok || len(list) != 1 || list[0] != "Education information not available in current profile" {
		t.Fatalf("unexpected facts: %#v", resp["facts"])
	}
}

func TestInterviewerUnknownTool(t *testing.T) {
	chat := &fakeChat{}
	chat.enqueue(functionCallResponse(&genai.FunctionCall{Name: "getSalary"}), nil)
	chat.enqueue(textResponse("Let's focus on my experience instead."), nil)

	lookup := &recordingLookup{}
	g, _ := newTestGenerator(chat, 1)
	interviewer, err := g.NewInterviewer(context.Background(), "persona", lookup, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := interviewer.Reply(context.Background(), "What salary do you expect?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lookup.queries) != 0 {
		t.Fatalf("unknown tools must not reach the facts lookup")
	}
	if _, ok := chat.sent[1][0].FunctionResponse.Response["error"]; !ok {
		t.Fatalf("expected error response for unknown tool")
	}
}

func TestInterviewerLimitsToolRounds(t *testing.T) {
	chat := &fakeChat{}
	for i := 0; i <= maxToolRounds; i++ {
		chat.enqueue(functionCallResponse(&genai.FunctionCall{Name: facts.ToolName, Args: map[string]any{"query": "skills"}}), nil)
	}

	g, _ := newTestGenerator(chat, 1)
	interviewer, err := g.NewInterviewer(context.Background(), "persona", &recordingLookup{}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := interviewer.Reply(context.Background(), "skills?"); err == nil {
		t.Fatal("expected error when the model loops on tools")
	}
}

func TestInterviewerErrors(t *testing.T) {
	noSleep(t)

	chat := &fakeChat{}
	chat.enqueue(&genai.GenerateContentResponse{}, nil)
	chat.enqueue(nil, genai.APIError{Code: http.StatusBadRequest})

	g, _ := newTestGenerator(chat, 1)
	interviewer, err := g.NewInterviewer(context.Background(), "persona", &recordingLookup{}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := interviewer.Reply(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty line")
	}
	if _, err := interviewer.Reply(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty response")
	}
	if _, err := interviewer.Reply(context.Background(), "hello again"); err == nil {
		t.Fatal("expected api error to surface")
	}

	if _, err := g.NewInterviewer(context.Background(), "persona", nil, nil, 0); err == nil {
		t.Fatal("expected error without lookup")
	}
}

func TestResponseTextSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "planning the answer", Thought: true},
				{Text: " Hello "},
				{Text: "there"},
			}},
		}},
	}

	if got := responseText(resp); got != "Hello\nthere" {
		t.Fatalf("unexpected text: %q", got)
	}
}
