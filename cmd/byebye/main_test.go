package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"byebye/internal/config"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
	discogs    *httptest.Server
}

// setupCLITestEnv writes a config pointing at a fake Discogs API that
// answers searches from catalogue, keyed by catalog number.
func setupCLITestEnv(t *testing.T, catalogue map[string]string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DISCOGS_TOKEN", "")
	t.Setenv("BYEBYE_API_TOKEN", "")
	t.Setenv("BYEBYE_NTFY_TOPIC", "")
	t.Chdir(base)

	discogs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/identity" {
			_, _ = w.Write([]byte(`{"username":"tester"}`))
			return
		}
		if r.URL.Path != "/database/search" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		results, ok := catalogue[r.URL.Query().Get("catno")]
		if !ok {
			results = "[]"
		}
		_, _ = fmt.Fprintf(w, `{"results":%s}`, results)
	}))
	t.Cleanup(discogs.Close)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[discogs]
token = "test-token"
api_base_url = %q
web_base_url = %q
requests_per_minute = 0

[batch]
delay_ms = 0
auto_apply = true
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), discogs.URL, discogs.URL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, baseDir: base, discogs: discogs}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeJSON[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(output), &v); err != nil {
		t.Fatalf("decode %q: %v", output, err)
	}
	return v
}

func TestRootRejectsUnknownOutputFormat(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	_, _, err := runCLI(t, []string{"-o", "xml", "item", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}

func loadTestConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v (%s)", err, out)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "Reachable")
	requireContains(t, out, "Disabled")
}
