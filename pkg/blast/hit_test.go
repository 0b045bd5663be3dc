package blast

import (
	"errors"
	"strings"
	"testing"
)

func TestNewHitDerivedMetrics(t *testing.T) {
	h, err := NewHit("sample1.fasta", "beta-lactam", "contig1", 10, 109,
		"blaIMP-42_1_AB753456", 1, 100, 100, 100, 99,
		"ATGC", "ATGC")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.File() != "sample1.fasta" {
		t.Errorf("File() = %q", h.File())
	}
	if h.Database() != "beta-lactam" {
		t.Errorf("Database() = %q", h.Database())
	}
	if h.Contig() != "contig1" {
		t.Errorf("Contig() = %q", h.Contig())
	}
	if h.QueryStart() != 10 || h.QueryEnd() != 109 {
		t.Errorf("query range = [%d,%d]", h.QueryStart(), h.QueryEnd())
	}
	if h.RefID() != "blaIMP-42_1_AB753456" {
		t.Errorf("RefID() = %q", h.RefID())
	}
	if h.RefStart() != 1 || h.RefEnd() != 100 {
		t.Errorf("ref range = [%d,%d]", h.RefStart(), h.RefEnd())
	}
	if h.AlignmentLength() != 100 || h.HSPLength() != 100 {
		t.Errorf("lengths = %d/%d", h.HSPLength(), h.AlignmentLength())
	}
	if h.Seq() != "ATGC" || h.RefSeq() != "ATGC" {
		t.Errorf("sequences = %q / %q", h.Seq(), h.RefSeq())
	}
	if !h.Forward() {
		t.Error("expected a forward hit")
	}

	if h.PID() != 99.0 {
		t.Errorf("PID() = %f, want 99.0", h.PID())
	}
	if h.PLength() != 100.0 {
		t.Errorf("PLength() = %f, want 100.0", h.PLength())
	}
}

func TestNewHitNormalizesReverseStrand(t *testing.T) {
	h, err := NewHit("s.fasta", "db", "contig1", 5, 104,
		"gyrA", 100, 1, 100, 100, 100, "ATGC", "ATGC")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.RefStart() != 1 || h.RefEnd() != 100 {
		t.Errorf("ref range = [%d,%d], want [1,100]", h.RefStart(), h.RefEnd())
	}
	if h.QueryStart() > h.QueryEnd() {
		t.Errorf("query range not normalized: [%d,%d]", h.QueryStart(), h.QueryEnd())
	}
	if h.Forward() {
		t.Error("expected a reverse hit")
	}
}

func TestNewHitMalformed(t *testing.T) {
	cases := []struct {
		name      string
		refLength int
		hspLength int
		start     int
	}{
		{"zero reference length", 0, 100, 1},
		{"zero hsp length", 100, 0, 1},
		{"non-positive coordinate", 100, 100, 0},
	}

	for _, c := range cases {
		_, err := NewHit("s.fasta", "db", "contig1", c.start, 100,
			"gene", 1, 100, c.refLength, c.hspLength, 99, "A", "A")

		var malformed *MalformedHitError
		if !errors.As(err, &malformed) {
			t.Errorf("%s: expected MalformedHitError, got %v", c.name, err)
		}
	}
}

func TestSeqProper(t *testing.T) {
	forward, err := NewHit("s.fasta", "db", "contig1", 1, 4,
		"gene", 1, 4, 10, 4, 4, "AT-GC", "ATCGC")
	if err != nil {
		t.Fatal(err)
	}
	if got := forward.SeqProper(); got != "ATGC" {
		t.Errorf("SeqProper() = %q, want ATGC", got)
	}

	reverse, err := NewHit("s.fasta", "db", "contig1", 1, 4,
		"gene", 4, 1, 10, 4, 4, "ATGC", "ATGC")
	if err != nil {
		t.Fatal(err)
	}
	if got := reverse.SeqProper(); got != "GCAT" {
		t.Errorf("SeqProper() = %q, want GCAT", got)
	}
}

const blastOutput = `# BLASTN 2.14.0
# Query: contig1
contig1	10	109	blaIMP-42_1_AB753456	1	100	100	100	99	ATGCATGC	ATGCATGC
contig1	200	299	tet(A)_4_AJ517790	100	1	100	100	100	ATGCATGC	ATGCATGC
`

func TestParseHits(t *testing.T) {
	hits, err := ParseHits(strings.NewReader(blastOutput), "sample1.fasta", "beta-lactam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}

	if hits[0].RefID() != "blaIMP-42_1_AB753456" || !hits[0].Forward() {
		t.Errorf("first hit parsed wrong: %q forward=%t", hits[0].RefID(), hits[0].Forward())
	}
	if hits[1].RefID() != "tet(A)_4_AJ517790" || hits[1].Forward() {
		t.Errorf("second hit parsed wrong: %q forward=%t", hits[1].RefID(), hits[1].Forward())
	}
}

func TestParseHitsMalformedLine(t *testing.T) {
	bad := "contig1\t10\tnope\tgene\t1\t100\t100\t100\t99\tATGC\tATGC\n"

	_, err := ParseHits(strings.NewReader(bad), "s.fasta", "db")

	var malformed *MalformedHitError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedHitError, got %v", err)
	}
}
