package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"byebye/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("DISCOGS_TOKEN", "env-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "byebye")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "inventory.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Discogs.Token != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Discogs.Token)
	}
	if cfg.Discogs.APIBaseURL != config.Default().Discogs.APIBaseURL {
		t.Fatalf("unexpected api base url: %q", cfg.Discogs.APIBaseURL)
	}
	if cfg.BatchDelay() != 300*time.Millisecond {
		t.Fatalf("unexpected batch delay: %s", cfg.BatchDelay())
	}
	if !cfg.Batch.AutoApply {
		t.Fatal("expected auto apply enabled by default")
	}
	if cfg.Pricing.USDToJPY != 150 {
		t.Fatalf("unexpected conversion rate: %v", cfg.Pricing.USDToJPY)
	}
	if cfg.DiscogsTimeout() != 0 {
		t.Fatalf("expected no explicit timeout, got %s", cfg.DiscogsTimeout())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("DISCOGS_TOKEN", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "byebye.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Discogs struct {
			Token      string `toml:"token"`
			APIBaseURL string `toml:"api_base_url"`
		} `toml:"discogs"`
		SKU struct {
			Prefix string `toml:"prefix"`
		} `toml:"sku"`
		Batch struct {
			DelayMillis int `toml:"delay_ms"`
		} `toml:"batch"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Discogs.Token = "  file-token "
	custom.Discogs.APIBaseURL = "https://example.com/api/"
	custom.SKU.Prefix = " rec "
	custom.Batch.DelayMillis = 1000

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Discogs.Token != "file-token" {
		t.Fatalf("expected trimmed token, got %q", cfg.Discogs.Token)
	}
	if cfg.Discogs.APIBaseURL != "https://example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Discogs.APIBaseURL)
	}
	if cfg.SKU.Prefix != "REC" {
		t.Fatalf("expected upper-cased prefix, got %q", cfg.SKU.Prefix)
	}
	if cfg.BatchDelay() != time.Second {
		t.Fatalf("unexpected batch delay: %s", cfg.BatchDelay())
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadPrefix(t *testing.T) {
	cfg := config.Default()
	cfg.SKU.Prefix = "BB-1"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for prefix containing separator")
	}
}

func TestValidateRejectsNonHTTPBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.Discogs.APIBaseURL = "ftp://example.com"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "discogs.api_base_url") {
		t.Fatalf("expected api base url error, got %v", err)
	}
}

func TestCreateSampleWritesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.SKU.Prefix != "BB" {
		t.Fatalf("unexpected prefix from sample: %q", cfg.SKU.Prefix)
	}
}
