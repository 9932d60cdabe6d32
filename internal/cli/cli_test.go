package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/vietddude/statusrelay/internal/api/auth"
	"github.com/vietddude/statusrelay/internal/core/config"
	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/infra/storage/memory"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/statuspage"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"first line\nsecond", 20, "first line"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := preview(tt.in, tt.max); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"serve": false, "check": false, "messages": false,
		"status": false, "reset-blocks": false, "hash-password": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	routes := map[string]string{
		"/api/v2/status.json":               `{"status":{"indicator":"major","description":"Partial System Outage"}}`,
		"/api/v2/components.json":           `{"components":[{"id":"c1","name":"RPC","status":"partial_outage","updated_at":"2024-01-01T00:00:00Z"}]}`,
		"/api/v2/incidents/unresolved.json": `{"incidents":[{"id":"inc-1","name":"RPC latency","status":"investigating","impact":"major"},{"id":"inc-2","name":"Indexer lag","status":"identified","impact":"minor"}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	ctx := context.Background()
	summary, err := statuspage.NewClient(srv.URL+"/api/v2", "", time.Second).FetchSummary(ctx)
	if err != nil {
		t.Fatalf("FetchSummary failed: %v", err)
	}

	store := messages.NewStore(memory.NewMessageRepo(memory.NewMemoryStorage()))
	store.AddMessage(ctx, domain.IntegrationMessage{
		ID:        "automatic-1",
		Platform:  domain.PlatformDiscord,
		Content:   "RPC latency",
		Timestamp: "2024-01-01T00:00:00Z",
		Source:    domain.SourceAutomatic,
		Trigger:   &domain.Trigger{Type: domain.TriggerStatusUpdate, IncidentID: "inc-1"},
	})

	var out bytes.Buffer
	renderStatus(&out, summary, store.HasBeenSentAll(ctx, domain.IncidentIDs(summary.Incidents)))
	got := out.String()

	for _, want := range []string{"Overall: Partial System Outage (major)", "RPC", "partial_outage", "INCIDENT"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	lines := strings.Split(got, "\n")
	var inc1, inc2 string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "inc-1"):
			inc1 = l
		case strings.HasPrefix(l, "inc-2"):
			inc2 = l
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(inc1), "true") {
		t.Errorf("expected inc-1 marked sent, got %q", inc1)
	}
	if !strings.HasSuffix(strings.TrimSpace(inc2), "false") {
		t.Errorf("expected inc-2 marked unsent, got %q", inc2)
	}
}

func TestRenderStatus_NoIncidents(t *testing.T) {
	summary := &domain.StatusSummary{
		Status:     domain.PageStatus{Indicator: domain.ImpactNone, Description: "All Systems Operational"},
		Components: []domain.Component{},
		Incidents:  []domain.Incident{},
	}

	var out bytes.Buffer
	renderStatus(&out, summary, map[string]domain.SentStatus{})
	if !strings.Contains(out.String(), "No unresolved incidents") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestEnvLine_HashSurvivesDotenv(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "DEMO_USER=admin\n" + envLine(hash) + "\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	env, err := godotenv.Read(envPath)
	if err != nil {
		t.Fatalf("godotenv.Read failed: %v", err)
	}
	if env["DEMO_PASS_HASH"] != hash {
		t.Fatalf("hash mangled by .env parsing: got %q, want %q", env["DEMO_PASS_HASH"], hash)
	}

	// Same path the server takes: env vars expanded into config.yaml.
	t.Setenv("DEMO_USER", env["DEMO_USER"])
	t.Setenv("DEMO_PASS_HASH", env["DEMO_PASS_HASH"])
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "auth:\n  username: \"${DEMO_USER}\"\n  password_hash: \"${DEMO_PASS_HASH}\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}

	creds := auth.NewCredentials(cfg.Auth.Username, cfg.Auth.PasswordHash)
	if !creds.Verify("admin", "secret") {
		t.Error("expected the operator password to verify")
	}
	if creds.Verify("admin", "wrong") {
		t.Error("expected a wrong password to fail")
	}
}
