// Parsing and interpretation of BLAST results for AMR detection.
//
// ResultsParser drives the per-file, per-database iteration: read the raw
// alignment output, build Hit records, gate them on the identity and length
// thresholds, partition the survivors into overlap clusters per contig,
// select the reportable hits per cluster and accumulate them into a Table.
// The per-database-type policy (output naming, row schema) is supplied
// through DatabaseAdapter.

package blast

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"

	"amrscan/logger"
)

// FileBlastMap links each input file to the BLAST output path produced for
// every reference database it was searched against.
type FileBlastMap map[string]map[string]string

// DatabaseAdapter is the capability set a reference database type supplies
// to the parser: naming of the hits artifact, conversion of a selected Hit
// into a result row and assembly of the final table.
type DatabaseAdapter interface {
	// Name of the database type, eg "resfinder".
	Name() string

	// HitsFileName gives the matched-sequence artifact name for an input file.
	HitsFileName(inputFile string) string

	// BuildRow flattens a selected hit into one result row.
	BuildRow(h *Hit) ([]string, error)

	// BuildTable assembles the accumulated rows into the final table.
	BuildTable(rows [][]string) (*Table, error)
}

// MissingAlignmentOutputError reports an absent BLAST output file for a
// (file, database) pair. This is fatal for the whole parse, never skipped.
type MissingAlignmentOutputError struct {
	File     string
	Database string
	Path     string
}

func (e *MissingAlignmentOutputError) Error() string {
	return fmt.Sprintf("blast output [%s] for %s vs %s does not exist", e.Path, e.File, e.Database)
}

// ResultsParser interprets the BLAST outputs for a set of input files
// against one database type.
type ResultsParser struct {
	fileBlastMap     FileBlastMap
	adapter          DatabaseAdapter
	pidThreshold     float64
	plengthThreshold float64
	reportAll        bool
	outputDir        string // "" disables matched-sequence artifacts
}

func NewResultsParser(fileBlastMap FileBlastMap, adapter DatabaseAdapter,
	pidThreshold, plengthThreshold float64, reportAll bool, outputDir string) *ResultsParser {

	return &ResultsParser{
		fileBlastMap:     fileBlastMap,
		adapter:          adapter,
		pidThreshold:     pidThreshold,
		plengthThreshold: plengthThreshold,
		reportAll:        reportAll,
		outputDir:        outputDir,
	}
}

// Parse interprets every BLAST output in the map and returns the assembled
// result table. Files and databases are processed in sorted order so row
// order is deterministic for a given map.
func (p *ResultsParser) Parse() (*Table, error) {
	var rows [][]string

	for _, file := range sortedKeys(p.fileBlastMap) {
		databases := p.fileBlastMap[file]
		var records []*linear.Seq

		for _, database := range sortedKeys(databases) {
			blastOut := databases[database]
			logger.Debug("parsing blast output",
				zap.String("file", file),
				zap.String("database", database),
				zap.String("blast_out", blastOut))

			if _, err := os.Stat(blastOut); os.IsNotExist(err) {
				return nil, &MissingAlignmentOutputError{File: file, Database: database, Path: blastOut}
			}

			selected, err := p.parseOne(blastOut, file, database)
			if err != nil {
				return nil, err
			}

			for _, h := range selected {
				row, err := p.adapter.BuildRow(h)
				if err != nil {
					return nil, err
				}
				if row == nil {
					// the adapter judged the hit unreportable
					continue
				}
				rows = append(rows, row)
				records = append(records, seqRecord(h))
			}
		}

		if len(records) > 0 && p.outputDir != "" {
			out := filepath.Join(p.outputDir, p.adapter.HitsFileName(file))
			if err := writeSeqRecords(out, records); err != nil {
				return nil, err
			}
			logger.Debug("wrote hit sequences", zap.String("out", out), zap.Int("records", len(records)))
		}
	}

	return p.adapter.BuildTable(rows)
}

// parseOne reads one BLAST output file and returns the hits selected for
// reporting, in cluster emission order.
func (p *ResultsParser) parseOne(blastOut, file, database string) ([]*Hit, error) {
	f, err := os.Open(blastOut)
	if err != nil {
		return nil, fmt.Errorf("failed to open blast output %s: %w", blastOut, err)
	}
	defer f.Close()

	hits, err := ParseHits(f, file, database)
	if err != nil {
		return nil, err
	}

	// Threshold gate. Strictly greater than: a hit at exactly the cutoff
	// is excluded. Only passing hits enter the partitioner.
	partitions := NewPartitioner()
	for _, h := range hits {
		if h.PID() > p.pidThreshold && h.PLength() > p.plengthThreshold {
			partitions.Add(h)
		}
	}

	var selected []*Hit
	for _, group := range partitions.NonOverlapping() {
		selected = append(selected, Select(group, p.reportAll)...)
	}

	return selected, nil
}

// IsolateID derives the isolate identifier from an input file path: the
// base name with its extension removed.
func IsolateID(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// seqRecord builds the named FASTA record for one reported hit.
func seqRecord(h *Hit) *linear.Seq {
	s := linear.NewSeq(h.RefID(), alphabet.BytesToLetters([]byte(h.SeqProper())), alphabet.DNA)
	s.Desc = fmt.Sprintf(
		"isolate: %s, contig: %s, contig_start: %d, contig_end: %d, "+
			"resistance_gene_start: %d, resistance_gene_end: %d, "+
			"hsp/length: %d/%d, pid: %0.2f%%, plength: %0.2f%%",
		IsolateID(h.File()), h.Contig(), h.QueryStart(), h.QueryEnd(),
		h.RefStart(), h.RefEnd(),
		h.HSPLength(), h.AlignmentLength(), h.PID(), h.PLength())
	return s
}

func writeSeqRecords(path string, records []*linear.Seq) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create hits file %s: %w", path, err)
	}
	defer f.Close()

	w := fasta.NewWriter(f, 80)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write hit record %s: %w", rec.ID, err)
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
