package blast

import (
	"fmt"
	"strings"
)

// MutationDrugLookup resolves the predicted drug resistances conferred by a
// point mutation at a reference position of a gene.
type MutationDrugLookup interface {
	DrugsForMutation(organism, gene string, position int) ([]string, error)
}

// Mutation is one nucleotide difference between the matched query region and
// the reference gene, at a 1-based reference position.
type Mutation struct {
	Position int
	Ref      string
	Alt      string
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s%d%s", m.Ref, m.Position, m.Alt)
}

// PointfinderAdapter is the DatabaseAdapter for per-organism point-mutation
// databases, where a hit is only reportable if the aligned region actually
// differs from the reference gene.
type PointfinderAdapter struct {
	organism string
	drugs    MutationDrugLookup // nil disables phenotype prediction
}

func NewPointfinderAdapter(organism string, drugs MutationDrugLookup) *PointfinderAdapter {
	return &PointfinderAdapter{organism: organism, drugs: drugs}
}

func (a *PointfinderAdapter) Name() string {
	return "pointfinder"
}

func (a *PointfinderAdapter) HitsFileName(inputFile string) string {
	return "pointfinder_" + IsolateID(inputFile) + ".fsa"
}

func (a *PointfinderAdapter) columns() []string {
	cols := []string{"Isolate ID", "Gene"}
	if a.drugs != nil {
		cols = append(cols, "Predicted Phenotype")
	}
	return append(cols,
		"Type", "Position", "Mutation",
		"%Identity", "%Overlap", "HSP Length/Total Length",
		"Contig", "Start", "End")
}

// BuildRow returns nil for hits whose aligned region carries no nucleotide
// substitution: a perfect match to a wild-type reference is not a call.
func (a *PointfinderAdapter) BuildRow(h *Hit) ([]string, error) {
	mutations := CallMutations(h)
	if len(mutations) == 0 {
		return nil, nil
	}

	positions := make([]string, len(mutations))
	changes := make([]string, len(mutations))
	for i, m := range mutations {
		positions[i] = fmt.Sprintf("%d", m.Position)
		changes[i] = m.String()
	}

	start, end := h.QueryStart(), h.QueryEnd()
	if !h.Forward() {
		start, end = end, start
	}

	row := []string{IsolateID(h.File()), h.RefID()}

	if a.drugs != nil {
		var drugs []string
		seen := make(map[string]bool)
		for _, m := range mutations {
			found, err := a.drugs.DrugsForMutation(a.organism, h.RefID(), m.Position)
			if err != nil {
				return nil, fmt.Errorf("failed to look up phenotype for %s %s: %w", h.RefID(), m, err)
			}
			for _, d := range found {
				if !seen[d] {
					seen[d] = true
					drugs = append(drugs, d)
				}
			}
		}
		row = append(row, strings.Join(drugs, ", "))
	}

	return append(row,
		"nucleotide",
		strings.Join(positions, ", "),
		strings.Join(changes, ", "),
		fmt.Sprintf("%0.2f", h.PID()),
		fmt.Sprintf("%0.2f", h.PLength()),
		fmt.Sprintf("%d/%d", h.HSPLength(), h.AlignmentLength()),
		h.Contig(),
		fmt.Sprintf("%d", start),
		fmt.Sprintf("%d", end),
	), nil
}

func (a *PointfinderAdapter) BuildTable(rows [][]string) (*Table, error) {
	t := NewTable(a.columns())
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CallMutations walks the aligned query and reference texts of a hit and
// returns every nucleotide substitution with its 1-based reference position.
// Gap columns are skipped: indel calling needs codon context the nucleotide
// databases do not carry.
func CallMutations(h *Hit) []Mutation {
	query := h.Seq()
	ref := h.RefSeq()
	if len(query) != len(ref) {
		return nil
	}

	var mutations []Mutation
	offset := 0 // non-gap reference positions consumed

	for i := 0; i < len(ref); i++ {
		if ref[i] == '-' {
			continue
		}

		// BLAST prints reverse-strand alignments from the high reference
		// coordinate downward.
		pos := h.RefStart() + offset
		if !h.Forward() {
			pos = h.RefEnd() - offset
		}
		offset++

		if query[i] == '-' {
			continue
		}
		q := upperBase(query[i])
		r := upperBase(ref[i])
		if q != r {
			mutations = append(mutations, Mutation{Position: pos, Ref: string(r), Alt: string(q)})
		}
	}

	return mutations
}

func upperBase(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
