// Package db holds the gene/mutation to drug-resistance lookup table,
// stored as a SQLite database shipped alongside the reference databases.
//
// Schema:
//
//	arg_drug(gene_class TEXT, gene TEXT, accession TEXT, drug TEXT)
//	mutation_drug(organism TEXT, gene TEXT, position INTEGER, drug TEXT)
//	info(key TEXT, value TEXT)
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"amrscan/internal/util"
)

// Defining possible error
var ErrDrugTableNotExists = errors.New("drug resistance table does not exist")

type ARGDrugTable struct {
	db *sql.DB
}

func OpenARGDrugTable(path string) (*ARGDrugTable, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrDrugTableNotExists, path)
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drug table %s: %w", path, err)
	}

	return &ARGDrugTable{db: sqldb}, nil
}

func (t *ARGDrugTable) Close() error {
	return t.db.Close()
}

// DrugsForGene returns the drugs a resistance gene confers resistance to.
// An unknown gene yields an empty list, not an error: curation lags behind
// the sequence databases.
func (t *ARGDrugTable) DrugsForGene(geneClass, gene, accession string) ([]string, error) {

	ctx := context.TODO()

	qstring := `
		SELECT drug FROM arg_drug
		WHERE gene_class == ? AND gene == ? AND accession == ?
		ORDER BY drug;
	`

	stm, err := t.db.PrepareContext(ctx, qstring)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, geneClass, gene, accession)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drugs []string

	for rows.Next() {
		var drug string
		if err := rows.Scan(&drug); err != nil {
			return nil, err
		}
		drugs = append(drugs, drug)
	}

	return drugs, rows.Err()
}

// DrugsForMutation returns the drugs a point mutation at the given reference
// position confers resistance to.
func (t *ARGDrugTable) DrugsForMutation(organism, gene string, position int) ([]string, error) {

	ctx := context.TODO()

	qstring := `
		SELECT drug FROM mutation_drug
		WHERE organism == ? AND gene == ? AND position == ?
		ORDER BY drug;
	`

	stm, err := t.db.PrepareContext(ctx, qstring)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, organism, gene, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drugs []string

	for rows.Next() {
		var drug string
		if err := rows.Scan(&drug); err != nil {
			return nil, err
		}
		drugs = append(drugs, drug)
	}

	return drugs, rows.Err()
}

// Info returns the key/value metadata rows of the table (version, sources),
// for inclusion in the settings report.
func (t *ARGDrugTable) Info() ([][2]string, error) {

	ctx := context.TODO()

	rows, err := t.db.QueryContext(ctx, `SELECT key, value FROM info ORDER BY key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var info [][2]string

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		info = append(info, [2]string{key, value})
	}

	return info, rows.Err()
}
