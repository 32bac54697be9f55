package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecret(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("HH_TWIN_TEST_SECRET", "  from-env \n")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "inline value", src: Source{Value: " inline "}, want: "inline"},
		{name: "file wins over value", src: Source{Value: "inline", File: writeSecret(t, "from-file\n")}, want: "from-file"},
		{name: "value wins over env", src: Source{Value: "inline", Env: "HH_TWIN_TEST_SECRET"}, want: "inline"},
		{name: "env fallback", src: Source{Env: "HH_TWIN_TEST_SECRET"}, want: "from-env"},
		{name: "empty file", src: Source{Name: "api key", File: writeSecret(t, "  \n"), Env: "HH_TWIN_TEST_SECRET"}, wantErr: "api key file"},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "absent")}, wantErr: "reading secret"},
		{name: "nothing configured", src: Source{Name: "api key"}, wantErr: "api key is not configured"},
		{name: "unset env", src: Source{Name: "api key", Env: "HH_TWIN_TEST_UNSET"}, wantErr: "set HH_TWIN_TEST_UNSET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
