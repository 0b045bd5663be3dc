package blast

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tabline joins blast output columns with tabs.
func tabline(cols ...string) string {
	return strings.Join(cols, "\t") + "\n"
}

func writeBlastOut(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Two overlapping hits on contig1 at [10,100] and [50,150]. The second is
// against the longer reference gene, so best-hit mode must report only it.
func TestParseBestHitOverlappingRegion(t *testing.T) {
	dir := t.TempDir()

	out := writeBlastOut(t, dir, "sample1_db.tsv",
		tabline("contig1", "10", "100", "shortGene_1_ACC1", "1", "90", "90", "90", "90", "ATGC", "ATGC")+
			tabline("contig1", "50", "150", "longGene_1_ACC2", "1", "100", "100", "100", "100", "ATGC", "ATGC"))

	parser := NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		90.0, 50.0, false, "")

	table, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 1 {
		t.Fatalf("got %d rows, want 1", table.Len())
	}

	row := table.Rows()[0]
	if row[table.ColumnIndex("Gene")] != "longGene" {
		t.Errorf("reported gene %q, want longGene", row[table.ColumnIndex("Gene")])
	}
	if row[table.ColumnIndex("Start")] != "50" || row[table.ColumnIndex("End")] != "150" {
		t.Errorf("reported range %s-%s, want 50-150",
			row[table.ColumnIndex("Start")], row[table.ColumnIndex("End")])
	}
}

func TestParseReportAll(t *testing.T) {
	dir := t.TempDir()

	out := writeBlastOut(t, dir, "sample1_db.tsv",
		tabline("contig1", "10", "100", "shortGene_1_ACC1", "1", "90", "90", "90", "90", "ATGC", "ATGC")+
			tabline("contig1", "50", "150", "longGene_1_ACC2", "1", "100", "100", "100", "100", "ATGC", "ATGC"))

	parser := NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		90.0, 50.0, true, "")

	table, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("report-all got %d rows, want 2", table.Len())
	}

	// ranked order: the longer reference gene first
	if table.Rows()[0][table.ColumnIndex("Gene")] != "longGene" {
		t.Errorf("first row gene %q, want longGene", table.Rows()[0][table.ColumnIndex("Gene")])
	}
}

// A hit at exactly the threshold is excluded, the comparison is strictly
// greater than.
func TestParseThresholdsAreStrict(t *testing.T) {
	dir := t.TempDir()

	// pid = 100*98/100 = 98.0 exactly, plength = 100.0
	out := writeBlastOut(t, dir, "sample1_db.tsv",
		tabline("contig1", "1", "100", "gene_1_ACC", "1", "100", "100", "100", "98", "ATGC", "ATGC"))

	parser := NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		98.0, 60.0, false, "")

	table, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("hit at exactly the pid threshold must be excluded, got %d rows", table.Len())
	}

	// just above the threshold it passes
	parser = NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		97.9, 60.0, false, "")

	table, err = parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("hit above the pid threshold must pass, got %d rows", table.Len())
	}
}

func TestParseMissingAlignmentOutput(t *testing.T) {
	parser := NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": "/nonexistent/blast.tsv"}},
		NewResfinderAdapter(nil),
		98.0, 60.0, false, "")

	_, err := parser.Parse()

	var missing *MissingAlignmentOutputError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingAlignmentOutputError, got %v", err)
	}
	if missing.Database != "db" {
		t.Errorf("error names database %q, want db", missing.Database)
	}
}

func TestParseWritesHitSequences(t *testing.T) {
	dir := t.TempDir()
	hitsDir := t.TempDir()

	out := writeBlastOut(t, dir, "sample1_db.tsv",
		tabline("contig1", "1", "100", "gene_1_ACC", "1", "100", "100", "100", "100", "ATGCATGC", "ATGCATGC"))

	parser := NewResultsParser(
		FileBlastMap{"/tmp/sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		90.0, 50.0, false, hitsDir)

	if _, err := parser.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(hitsDir, "resfinder_sample1.fsa"))
	if err != nil {
		t.Fatalf("expected a hits file: %v", err)
	}

	text := string(content)
	if !strings.HasPrefix(text, ">gene_1_ACC ") {
		t.Errorf("record id line wrong: %q", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "isolate: sample1") {
		t.Errorf("record description missing isolate: %q", text)
	}
	if !strings.Contains(text, "pid: 100.00%") || !strings.Contains(text, "plength: 100.00%") {
		t.Errorf("record description missing formatted metrics: %q", text)
	}
	if !strings.Contains(text, "ATGCATGC") {
		t.Errorf("record sequence missing: %q", text)
	}
}

// No artifact may be written for an input file that produced zero hits.
func TestParseNoHitsNoArtifact(t *testing.T) {
	dir := t.TempDir()
	hitsDir := t.TempDir()

	out := writeBlastOut(t, dir, "empty.tsv", "# BLASTN 2.14.0\n")

	parser := NewResultsParser(
		FileBlastMap{"sample1.fasta": {"db": out}},
		NewResfinderAdapter(nil),
		98.0, 60.0, false, hitsDir)

	if _, err := parser.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(hitsDir, "resfinder_sample1.fsa")); !os.IsNotExist(err) {
		t.Error("no hits file may be written for a file without hits")
	}
}

func TestIsolateID(t *testing.T) {
	if got := IsolateID("/path/to/sample1.fasta"); got != "sample1" {
		t.Errorf("IsolateID = %q, want sample1", got)
	}
}
