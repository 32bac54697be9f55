package backend

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const profileBody = `{"profile": {
	"fullName": "Jane Doe",
	"skills": [{"name": "Go", "yearsOfExp": 4}],
	"interviewInsights": [{"jobTitle": "SRE", "company": "Initech", "interviewBrief": "Calm"}]
}}`

func TestFetchProfile(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profileBody))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), srv.URL+"/", time.Second)

	c, err := client.FetchProfile(context.Background(), "cand 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/users/profile/cand%2042" {
		t.Fatalf("unexpected request path: %s", gotPath)
	}
	if gotAgent != userAgent {
		t.Fatalf("unexpected user agent: %s", gotAgent)
	}
	if c.FullName != "Jane Doe" || len(c.Skills) != 1 || c.Skills[0].YearsOfExp != 4 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if len(c.InterviewInsights) != 1 {
		t.Fatalf("expected interview insights to be decoded, got %+v", c.InterviewInsights)
	}
}

func TestFetchProfileGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(profileBody))
		_ = gz.Close()
	}))
	defer srv.Close()

	c, err := New(nil, srv.URL, 0).FetchProfile(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.FullName != "Jane Doe" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestFetchProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "missing", http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
					t.Fatalf("expected status error 404, got %v", err)
				}
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"profile": [`))
			},
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "decode response") {
					t.Fatalf("expected decode error, got %v", err)
				}
			},
		},
		{
			name: "missing profile",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"profile": null}`))
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNoProfile) {
					t.Fatalf("expected ErrNoProfile, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(zap.NewNop(), srv.URL, time.Second).FetchProfile(context.Background(), "42")
			tt.check(t, err)
		})
	}
}

func TestFetchProfileRequiresID(t *testing.T) {
	if _, err := New(nil, "", 0).FetchProfile(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty candidate id")
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(nil, "", 0)
	if c.BaseURL != DefaultURL {
		t.Fatalf("expected default url, got %s", c.BaseURL)
	}
	if c.HTTPClient.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", c.HTTPClient.Timeout)
	}
}
