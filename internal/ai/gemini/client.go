package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-twin/internal/utils"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.8
	defaultMaxRetries  = 3

	retryBaseDelay = 2 * time.Second
	// Requests asking to come back later than this are not retried.
	maxServerDelay = 30 * time.Second
)

var sleep = utils.WaitFor

var retryAfterRe = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(s|sec|secs|seconds?)\b`)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type sdkChats struct {
	chats *genai.Chats
}

func (s sdkChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := s.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Generator opens Gemini chats and sends messages with retries on temporary failures.
type Generator struct {
	chats       chatCreator
	model       string
	maxRetries  int
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
// maxRetries is the total number of attempts per message.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, temperature float32, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats:       sdkChats{chats: client.Chats},
		model:       model,
		maxRetries:  maxRetries,
		temperature: temperature,
		logger:      logger,
	}, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) startChat(ctx context.Context, systemInstruction string, tools []*genai.Tool) (chatSession, error) {
	if g == nil || g.chats == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	systemInstruction = strings.TrimSpace(systemInstruction)
	if systemInstruction == "" {
		return nil, errors.New("system instruction must not be empty")
	}

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Tools:             tools,
		Temperature:       &temperature,
	}

	chat, err := g.chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (g *Generator) send(ctx context.Context, chat chatSession, parts []genai.Part) (*genai.GenerateContentResponse, error) {
	attempts := g.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := chat.SendMessage(ctx, parts...)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("send message: %w", lastErr)
}

// retryDelay decides whether err is temporary and how long to wait before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
	default:
		return 0, false
	}

	delay := retryBaseDelay * time.Duration(attempt)
	if requested, ok := parseRetryAfter(apiErr.Message); ok {
		if requested > maxServerDelay {
			return 0, false
		}
		if requested > delay {
			delay = requested
		}
	}

	return delay, true
}

func parseRetryAfter(msg string) (time.Duration, bool) {
	m := retryAfterRe.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
