package main

import (
	"strings"
	"testing"

	"byebye/internal/batch"
	"byebye/internal/inventory"
)

func TestIdentifyAppliesSingleMatches(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{
		"SJX-1": `[{"id":11,"title":"Tatsuro Yamashita - Spacy","catno":"SJX-1","year":"1977"}]`,
		"DUO-2": `[{"id":21,"title":"A - One"},{"id":22,"title":"B - Two"}]`,
	})

	for _, catno := range []string{"SJX-1", "DUO-2", "NONE-3"} {
		if _, _, err := runCLI(t, []string{"item", "add", "--catalog-no", catno}, env.configPath); err != nil {
			t.Fatalf("item add %s: %v", catno, err)
		}
	}

	out, stderr, err := runCLI(t, []string{"-o", "json", "identify", "--unidentified"}, env.configPath)
	if err != nil {
		t.Fatalf("identify: %v (stderr %q)", err, stderr)
	}
	summary := decodeJSON[batch.Summary](t, out)
	if summary.Total != 3 || summary.Found != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	got := make(map[string]batch.Outcome)
	for _, state := range summary.States {
		got[state.CatalogNo] = state.Outcome
	}
	want := map[string]batch.Outcome{
		"SJX-1":  batch.OutcomeFound,
		"DUO-2":  batch.OutcomeMultiple,
		"NONE-3": batch.OutcomeNotFound,
	}
	for catno, outcome := range want {
		if got[catno] != outcome {
			t.Fatalf("%s: got %q want %q", catno, got[catno], outcome)
		}
	}
	requireContains(t, stderr, "[1/3]")

	out, _, err = runCLI(t, []string{"-o", "json", "item", "list", "--text", "SJX-1"}, env.configPath)
	if err != nil {
		t.Fatalf("item list: %v", err)
	}
	items := decodeJSON[[]inventory.Item](t, out)
	if len(items) != 1 || items[0].Title != "Spacy" || items[0].Artist != "Tatsuro Yamashita" {
		t.Fatalf("expected match applied, got %+v", items)
	}
}

func TestIdentifyRequiresOneTargetSource(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	_, _, err := runCLI(t, []string{"identify"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("expected target error, got %v", err)
	}
}

func TestIdentifyReportsBusyLock(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	if _, _, err := runCLI(t, []string{"item", "add", "--catalog-no", "X-1"}, env.configPath); err != nil {
		t.Fatalf("item add: %v", err)
	}

	cfg := loadTestConfig(t, env.configPath)
	lock, err := batch.AcquireLock(cfg.BatchLockPath())
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer func() { _ = lock.Release() }()

	_, _, err = runCLI(t, []string{"identify", "1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another batch run") {
		t.Fatalf("expected busy error, got %v", err)
	}
}
