package detection

import (
	"fmt"
	"strings"

	"amrscan/pkg/blast"
)

// negativeGenotype marks an isolate with no AMR determinant above the
// thresholds.
const negativeGenotype = "None"

// buildSummary collapses the per-hit tables into one row per isolate with
// comma-joined genotypes (and phenotypes when prediction is on). Isolates
// are ordered as their input files were given.
func buildSummary(files []string, resfinder, pointfinder *blast.Table,
	includeNegatives, includeResistances bool) *blast.Table {

	genotypes := make(map[string][]string)
	phenotypes := make(map[string][]string)

	collect := func(t *blast.Table, mutationStyle bool) {
		if t == nil {
			return
		}
		isolateCol := t.ColumnIndex("Isolate ID")
		geneCol := t.ColumnIndex("Gene")
		phenoCol := t.ColumnIndex("Predicted Phenotype")
		mutationCol := t.ColumnIndex("Mutation")

		for _, row := range t.Rows() {
			isolate := row[isolateCol]

			genotype := row[geneCol]
			if mutationStyle && mutationCol >= 0 {
				genotype = fmt.Sprintf("%s (%s)", genotype, row[mutationCol])
			}
			genotypes[isolate] = append(genotypes[isolate], genotype)

			if phenoCol >= 0 && row[phenoCol] != blast.Blank {
				phenotypes[isolate] = appendUnique(phenotypes[isolate], row[phenoCol])
			}
		}
	}

	collect(resfinder, false)
	collect(pointfinder, true)

	columns := []string{"Isolate ID", "Genotype"}
	if includeResistances {
		columns = append(columns, "Predicted Phenotype")
	}
	summary := blast.NewTable(columns)

	for _, file := range files {
		isolate := blast.IsolateID(file)
		found := genotypes[isolate]

		if len(found) == 0 && !includeNegatives {
			continue
		}

		genotype := negativeGenotype
		phenotype := "Sensitive"
		if len(found) > 0 {
			genotype = strings.Join(found, ", ")
			phenotype = strings.Join(phenotypes[isolate], ", ")
		}

		row := []string{isolate, genotype}
		if includeResistances {
			row = append(row, phenotype)
		}
		// schema is fixed above, Append cannot fail here
		_ = summary.Append(row)
	}

	return summary
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
