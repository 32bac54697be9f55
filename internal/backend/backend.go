package backend

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultURL     = "http://localhost:3001"
	DefaultTimeout = 10 * time.Second
	userAgent      = "spigell/hh-twin"
	profilePath    = "/api/users/profile/"
)

// Client talks to the candidate backend that owns profiles and interview history.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

// New creates a client for the backend at baseURL. A non-positive timeout
// falls back to DefaultTimeout.
func New(logger *zap.Logger, baseURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		logger:  logger,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}
