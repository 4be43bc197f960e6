package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"byebye/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDiscogs_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/identity" || r.Header.Get("Authorization") != "Discogs token=good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckDiscogs(context.Background(), srv.URL, "good", "test-agent")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckDiscogs_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckDiscogs(context.Background(), srv.URL, "bad", "")
	if result.Passed {
		t.Fatal("expected failure for bad token")
	}
}

func TestCheckDiscogs_MissingToken(t *testing.T) {
	result := CheckDiscogs(context.Background(), "http://localhost", "", "")
	if result.Passed {
		t.Fatal("expected failure for missing token")
	}
}

func TestCheckNtfy_InvalidURL(t *testing.T) {
	result := CheckNtfy(context.Background(), "not a url")
	if result.Passed {
		t.Fatal("expected failure for invalid topic")
	}
}

func TestCheckNtfy_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckNtfy(context.Background(), srv.URL+"/byebye")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_WithoutTokenOrTopic(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Discogs.Token = ""
	cfg.Notifications.NtfyTopic = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["Data directory"].Passed || !byName["Log directory"].Passed {
		t.Fatalf("directory checks failed: %+v", results)
	}
	if byName["Discogs"].Passed {
		t.Fatal("expected discogs check to fail without a token")
	}
	if n := byName["Notifications"]; !n.Passed || n.Detail != "Disabled" {
		t.Fatalf("expected disabled notifications to pass, got %+v", n)
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report the discogs failure")
	}
}
