package blast

import (
	"fmt"
	"strings"
)

// GeneDrugLookup resolves the predicted drug resistances conferred by an
// acquired resistance gene. pkg/db provides the SQLite-backed implementation.
type GeneDrugLookup interface {
	DrugsForGene(geneClass, gene, accession string) ([]string, error)
}

// ResfinderAdapter is the DatabaseAdapter for acquired-resistance gene
// databases, where each reference sequence id encodes gene, variant and
// accession separated by underscores (eg "blaIMP-42_1_AB753456").
type ResfinderAdapter struct {
	drugs GeneDrugLookup // nil disables phenotype prediction
}

func NewResfinderAdapter(drugs GeneDrugLookup) *ResfinderAdapter {
	return &ResfinderAdapter{drugs: drugs}
}

func (a *ResfinderAdapter) Name() string {
	return "resfinder"
}

func (a *ResfinderAdapter) HitsFileName(inputFile string) string {
	return "resfinder_" + IsolateID(inputFile) + ".fsa"
}

func (a *ResfinderAdapter) columns() []string {
	cols := []string{"Isolate ID", "Gene"}
	if a.drugs != nil {
		cols = append(cols, "Predicted Phenotype")
	}
	return append(cols,
		"%Identity", "%Overlap", "HSP Length/Total Length",
		"Contig", "Start", "End", "Accession")
}

func (a *ResfinderAdapter) BuildRow(h *Hit) ([]string, error) {
	gene, accession := splitResfinderID(h.RefID())

	// Report query coordinates in match orientation, start > end marks a
	// reverse-strand hit.
	start, end := h.QueryStart(), h.QueryEnd()
	if !h.Forward() {
		start, end = end, start
	}

	row := []string{IsolateID(h.File()), gene}

	if a.drugs != nil {
		drugs, err := a.drugs.DrugsForGene(h.Database(), gene, accession)
		if err != nil {
			return nil, fmt.Errorf("failed to look up phenotype for %s: %w", gene, err)
		}
		row = append(row, strings.Join(drugs, ", "))
	}

	return append(row,
		fmt.Sprintf("%0.2f", h.PID()),
		fmt.Sprintf("%0.2f", h.PLength()),
		fmt.Sprintf("%d/%d", h.HSPLength(), h.AlignmentLength()),
		h.Contig(),
		fmt.Sprintf("%d", start),
		fmt.Sprintf("%d", end),
		accession,
	), nil
}

func (a *ResfinderAdapter) BuildTable(rows [][]string) (*Table, error) {
	t := NewTable(a.columns())
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// splitResfinderID splits a reference id of the form gene_variant_accession.
// Ids without underscores are taken as a bare gene name.
func splitResfinderID(id string) (gene, accession string) {
	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return id, ""
	}
	return parts[0], parts[len(parts)-1]
}
