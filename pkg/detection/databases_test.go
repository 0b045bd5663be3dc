package detection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDataDir(t *testing.T) string {
	t.Helper()

	dataDir := t.TempDir()
	for _, p := range []string{
		"resfinder/beta-lactam.fsa",
		"resfinder/tetracycline.fsa",
		"pointfinder/salmonella.fsa",
	} {
		full := filepath.Join(dataDir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(">ref\nATGC\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dataDir
}

func TestResfinderDatabases(t *testing.T) {
	dataDir := writeDataDir(t)

	dbs, err := ResfinderDatabases(dataDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dbs) != 2 {
		t.Fatalf("got %d databases, want 2", len(dbs))
	}
	if _, ok := dbs["beta-lactam"]; !ok {
		t.Errorf("missing beta-lactam class: %v", dbs)
	}
}

func TestPointfinderDatabase(t *testing.T) {
	dataDir := writeDataDir(t)

	dbs, err := PointfinderDatabase(dataDir, "salmonella")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dbs) != 1 {
		t.Fatalf("got %d databases, want 1", len(dbs))
	}

	if _, err := PointfinderDatabase(dataDir, "campylobacter"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase for unknown organism, got %v", err)
	}
}

func TestPointfinderOrganisms(t *testing.T) {
	dataDir := writeDataDir(t)

	organisms, err := PointfinderOrganisms(dataDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(organisms) != 1 || organisms[0] != "salmonella" {
		t.Errorf("organisms = %v, want [salmonella]", organisms)
	}
}

func TestResfinderDatabasesEmptyDir(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "resfinder"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := ResfinderDatabases(dataDir); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}
