// Package detection runs the whole AMR screen: BLAST every input assembly
// against the configured reference databases, interpret the outputs with the
// results parsers and assemble the per-isolate summary.
package detection

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"amrscan/logger"
	"amrscan/pkg/blast"
	"amrscan/pkg/db"
)

// Settings are the knobs of one detection run.
type Settings struct {
	// Data directory holding resfinder/ and pointfinder/ databases.
	Database string

	PidThreshold       float64
	PlengthResfinder   float64
	PlengthPointfinder float64

	// Organism selecting a pointfinder database; "" disables mutation calls.
	PointfinderOrganism string

	// Report every hit per overlap cluster instead of the best one.
	ReportAll bool

	// Include isolates with zero hits in the summary.
	IncludeNegatives bool

	// Directory for matched-sequence FASTA artifacts; "" disables them.
	HitsDir string

	// Concurrent blastn processes.
	Nprocs int
}

// Results of one detection run.
type Results struct {
	RunID       string
	Resfinder   *blast.Table
	Pointfinder *blast.Table // nil unless an organism was set
	Summary     *blast.Table
	Started     time.Time
	Ended       time.Time
}

// Detector wires the runner, parsers and phenotype lookup together.
type Detector struct {
	settings Settings
	drugs    *db.ARGDrugTable // nil disables phenotype prediction
}

func NewDetector(settings Settings, drugs *db.ARGDrugTable) *Detector {
	return &Detector{settings: settings, drugs: drugs}
}

// Run executes the screen over the input assembly files. BLAST outputs live
// in a scratch directory named after the run ID and are removed afterwards.
func (d *Detector) Run(files []string) (*Results, error) {
	results := &Results{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	scratch := filepath.Join(os.TempDir(), "amrscan-"+results.RunID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	logger.Info("starting AMR detection",
		zap.String("run_id", results.RunID),
		zap.Int("files", len(files)),
		zap.String("scratch", scratch))

	resfinderTable, err := d.runResfinder(files, scratch)
	if err != nil {
		return nil, err
	}
	results.Resfinder = resfinderTable

	if d.settings.PointfinderOrganism != "" {
		pointfinderTable, err := d.runPointfinder(files, scratch)
		if err != nil {
			return nil, err
		}
		results.Pointfinder = pointfinderTable
	}

	results.Summary = buildSummary(files, results.Resfinder, results.Pointfinder,
		d.settings.IncludeNegatives, d.drugs != nil)
	results.Ended = time.Now()

	logger.Info("finished AMR detection",
		zap.String("run_id", results.RunID),
		zap.Int("resfinder_hits", results.Resfinder.Len()))

	return results, nil
}

func (d *Detector) runResfinder(files []string, scratch string) (*blast.Table, error) {
	databases, err := ResfinderDatabases(d.settings.Database)
	if err != nil {
		return nil, err
	}

	fileBlastMap, err := blast.RunBlast(files, databases, scratch, d.settings.Nprocs)
	if err != nil {
		return nil, err
	}

	var lookup blast.GeneDrugLookup
	if d.drugs != nil {
		lookup = d.drugs
	}

	parser := blast.NewResultsParser(fileBlastMap, blast.NewResfinderAdapter(lookup),
		d.settings.PidThreshold, d.settings.PlengthResfinder,
		d.settings.ReportAll, d.settings.HitsDir)

	return parser.Parse()
}

func (d *Detector) runPointfinder(files []string, scratch string) (*blast.Table, error) {
	organism := d.settings.PointfinderOrganism

	databases, err := PointfinderDatabase(d.settings.Database, organism)
	if err != nil {
		return nil, err
	}

	fileBlastMap, err := blast.RunBlast(files, databases, scratch, d.settings.Nprocs)
	if err != nil {
		return nil, err
	}

	var lookup blast.MutationDrugLookup
	if d.drugs != nil {
		lookup = d.drugs
	}

	parser := blast.NewResultsParser(fileBlastMap, blast.NewPointfinderAdapter(organism, lookup),
		d.settings.PidThreshold, d.settings.PlengthPointfinder,
		d.settings.ReportAll, d.settings.HitsDir)

	return parser.Parse()
}
