package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/kicker-league/internal/config"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

const cupExport = `{
  "_id": "cup-1",
  "name": "Monday Cup",
  "createdAt": "2025-03-03T18:00:00Z",
  "qualifying": [{"rounds": [{"matches": [{
    "_id": "m1",
    "team1": {"players": [{"name": "Anna"}, {"name": "Ben"}]},
    "team2": {"players": [{"name": "Carl"}, {"name": "Dora"}]},
    "result": [7, 5]
  }]}], "standings": [
    {"name": "Anna", "place": 1, "points": 3},
    {"name": "Ben", "place": 1, "points": 3},
    {"name": "Carl", "place": 3},
    {"name": "Dora", "place": 3}
  ]}],
  "eliminations": []
}`

func TestCollectItemsExpandsDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	single := filepath.Join(t.TempDir(), "single.json")
	if err := os.WriteFile(single, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write single: %v", err)
	}

	items, err := collectItems([]string{single, dir})
	if err != nil {
		t.Fatalf("collect items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Source != single || filepath.Base(items[1].Source) != "a.json" || filepath.Base(items[2].Source) != "b.json" {
		t.Fatalf("unexpected order: %s, %s, %s", items[0].Source, items[1].Source, items[2].Source)
	}
}

func TestCollectItemsMissingPath(t *testing.T) {
	t.Parallel()

	if _, err := collectItems([]string{filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestParseFlagsRequiresWork(t *testing.T) {
	t.Parallel()

	if _, err := parseFlags(nil); err == nil {
		t.Fatalf("expected error without arguments")
	}
	opts, err := parseFlags([]string{"-season", "2025", "exports"})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if opts.season != 2025 || len(opts.paths) != 1 || opts.paths[0] != "exports" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestRunImportsAgainstMemoryStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cup.json")
	if err := os.WriteFile(path, []byte(cupExport), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	cfg := config.Config{
		StoreDriver:           config.StoreDriverMemory,
		SyncWorkers:           2,
		RatingMu:              25,
		RatingSigma:           25.0 / 3,
		RatingBeta:            5.5,
		RatingTau:             0.12,
		RatingDrawProbability: 0.1,
	}
	var out bytes.Buffer
	err := run(context.Background(), cfg, options{paths: []string{path}, placement: "cup-1"}, logging.NewNop(), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"succeeded": 1`) {
		t.Fatalf("expected one successful import, got %s", out.String())
	}
	if !strings.Contains(out.String(), "Anna") {
		t.Fatalf("expected placement output to list players, got %s", out.String())
	}
}
