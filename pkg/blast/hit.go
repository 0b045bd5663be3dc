// Hit record for a single BLAST HSP and parsing of blastn tabular output.

package blast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Tabular column layout expected from blastn. Every field a Hit needs is
// requested explicitly so the parser never depends on the default outfmt 6.
const OutputFormat = "6 qseqid qstart qend sseqid sstart send slen length nident qseq sseq"

const numOutputColumns = 11

// Hit is one candidate AMR match: a single HSP between a region of a query
// contig and a reference database sequence. A Hit is immutable after
// construction, coordinates are 1-based and normalized so that start <= end
// on both the query and the reference.
type Hit struct {
	file     string
	database string

	contig     string
	queryStart int
	queryEnd   int

	refID    string
	refStart int
	refEnd   int

	// Full length of the reference sequence (what BLAST calls the
	// alignment length in its XML report).
	alignmentLength int

	// Length of the aligned HSP region.
	hspLength int

	identities int
	pid        float64
	plength    float64

	// Aligned query and reference texts, exactly as reported (gaps kept).
	seq    string
	refSeq string

	// false when the match is on the reverse strand of the query
	forward bool
}

// MalformedHitError reports a degenerate alignment record, such as a zero
// reference length or coordinates that cannot be normalized.
type MalformedHitError struct {
	Contig string
	RefID  string
	Reason string
}

func (e *MalformedHitError) Error() string {
	return fmt.Sprintf("malformed hit %s vs %s: %s", e.Contig, e.RefID, e.Reason)
}

// NewHit builds a Hit from one raw alignment record and computes the derived
// percent identity and percent length.
func NewHit(file, database, contig string, queryStart, queryEnd int,
	refID string, refStart, refEnd, refLength, hspLength, identities int,
	seq, refSeq string) (*Hit, error) {

	if refLength <= 0 {
		return nil, &MalformedHitError{Contig: contig, RefID: refID, Reason: "zero reference length"}
	}
	if hspLength <= 0 {
		return nil, &MalformedHitError{Contig: contig, RefID: refID, Reason: "zero HSP length"}
	}
	if queryStart <= 0 || queryEnd <= 0 || refStart <= 0 || refEnd <= 0 {
		return nil, &MalformedHitError{Contig: contig, RefID: refID, Reason: "non-positive coordinates"}
	}

	forward := true

	// blastn reports a reverse-strand match by inverting one coordinate
	// pair. Normalize both to start <= end and remember the orientation.
	if queryStart > queryEnd {
		queryStart, queryEnd = queryEnd, queryStart
		forward = !forward
	}
	if refStart > refEnd {
		refStart, refEnd = refEnd, refStart
		forward = !forward
	}

	return &Hit{
		file:            file,
		database:        database,
		contig:          contig,
		queryStart:      queryStart,
		queryEnd:        queryEnd,
		refID:           refID,
		refStart:        refStart,
		refEnd:          refEnd,
		alignmentLength: refLength,
		hspLength:       hspLength,
		identities:      identities,
		pid:             100.0 * float64(identities) / float64(hspLength),
		plength:         100.0 * float64(hspLength) / float64(refLength),
		seq:             seq,
		refSeq:          refSeq,
		forward:         forward,
	}, nil
}

func (h *Hit) File() string     { return h.file }
func (h *Hit) Database() string { return h.database }
func (h *Hit) Contig() string   { return h.contig }
func (h *Hit) QueryStart() int  { return h.queryStart }
func (h *Hit) QueryEnd() int    { return h.queryEnd }
func (h *Hit) RefID() string    { return h.refID }
func (h *Hit) RefStart() int    { return h.refStart }
func (h *Hit) RefEnd() int      { return h.refEnd }

// AlignmentLength is the total length of the matched reference sequence.
func (h *Hit) AlignmentLength() int { return h.alignmentLength }

// HSPLength is the length of the aligned high-scoring region.
func (h *Hit) HSPLength() int { return h.hspLength }

func (h *Hit) Identities() int  { return h.identities }
func (h *Hit) PID() float64     { return h.pid }
func (h *Hit) PLength() float64 { return h.plength }
func (h *Hit) Seq() string      { return h.seq }
func (h *Hit) RefSeq() string   { return h.refSeq }
func (h *Hit) Forward() bool    { return h.forward }

// SeqProper returns the matched query subsequence with gap markers removed,
// reverse complemented when the match was on the reverse strand, so the text
// reads in the orientation of the reference gene.
func (h *Hit) SeqProper() string {
	s := strings.ReplaceAll(h.seq, "-", "")
	if !h.forward {
		s = reverseComplement(s)
	}
	return s
}

func reverseComplement(seq string) string {
	rc := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[len(seq)-1-i]
		switch c {
		case 'A':
			c = 'T'
		case 'T':
			c = 'A'
		case 'G':
			c = 'C'
		case 'C':
			c = 'G'
		case 'a':
			c = 't'
		case 't':
			c = 'a'
		case 'g':
			c = 'c'
		case 'c':
			c = 'g'
		}
		rc[i] = c
	}
	return string(rc)
}

// ParseHits reads blastn output produced with OutputFormat and returns one
// Hit per HSP line. Comment lines are skipped. Any structural inconsistency
// is a hard failure, dropping a record silently would corrupt the report.
func ParseHits(r io.Reader, file, database string) ([]*Hit, error) {
	var hits []*Hit

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}
		if len(cols) < numOutputColumns {
			return nil, &MalformedHitError{
				Contig: cols[0],
				Reason: fmt.Sprintf("expected %d columns, got %d", numOutputColumns, len(cols)),
			}
		}

		contig := cols[0]
		refID := cols[3]

		queryStart, err := parseCoord(cols[1], contig, refID)
		if err != nil {
			return nil, err
		}
		queryEnd, err := parseCoord(cols[2], contig, refID)
		if err != nil {
			return nil, err
		}
		refStart, err := parseCoord(cols[4], contig, refID)
		if err != nil {
			return nil, err
		}
		refEnd, err := parseCoord(cols[5], contig, refID)
		if err != nil {
			return nil, err
		}
		refLength, err := parseCoord(cols[6], contig, refID)
		if err != nil {
			return nil, err
		}
		hspLength, err := parseCoord(cols[7], contig, refID)
		if err != nil {
			return nil, err
		}
		identities, err := parseCoord(cols[8], contig, refID)
		if err != nil {
			return nil, err
		}

		hit, err := NewHit(file, database, contig, queryStart, queryEnd,
			refID, refStart, refEnd, refLength, hspLength, identities,
			cols[9], cols[10])
		if err != nil {
			return nil, err
		}

		hits = append(hits, hit)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading blast output for %s vs %s: %w", file, database, err)
	}

	return hits, nil
}

func parseCoord(s, contig, refID string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &MalformedHitError{
			Contig: contig,
			RefID:  refID,
			Reason: fmt.Sprintf("unparseable field %q", s),
		}
	}
	return n, nil
}
