package detection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"amrscan/internal/util"
)

// Defining possible error
var ErrNoDatabase = errors.New("no reference databases found")

// ResfinderDatabases lists the acquired-gene BLAST databases under
// <dataDir>/resfinder, one per drug class, keyed by class name. Index files
// are assumed to have been built already.
func ResfinderDatabases(dataDir string) (map[string]string, error) {
	dir := filepath.Join(dataDir, "resfinder")
	return fastaDatabases(dir)
}

// PointfinderDatabase returns the single mutation BLAST database for an
// organism, at <dataDir>/pointfinder/<organism>.fsa.
func PointfinderDatabase(dataDir, organism string) (map[string]string, error) {
	path := filepath.Join(dataDir, "pointfinder", organism+".fsa")
	if !util.FileExists(path) {
		return nil, fmt.Errorf("%w: no pointfinder database for organism %q in %s",
			ErrNoDatabase, organism, dataDir)
	}
	return map[string]string{organism: path}, nil
}

// PointfinderOrganisms lists the organisms a pointfinder database exists for.
func PointfinderOrganisms(dataDir string) ([]string, error) {
	dbs, err := fastaDatabases(filepath.Join(dataDir, "pointfinder"))
	if err != nil {
		return nil, err
	}

	organisms := make([]string, 0, len(dbs))
	for organism := range dbs {
		organisms = append(organisms, organism)
	}
	return organisms, nil
}

func fastaDatabases(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read database directory %s: %w", dir, err)
	}

	dbs := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".fsa") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".fsa")
		dbs[name] = filepath.Join(dir, e.Name())
	}

	if len(dbs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDatabase, dir)
	}
	return dbs, nil
}
