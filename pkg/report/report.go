// Package report renders detection results: TSV tables, the aligned
// settings listing and the Excel workbook.
package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"amrscan/pkg/blast"
)

// WriteTableTSV writes one result table to a file.
func WriteTableTSV(t *blast.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return t.WriteTSV(f)
}

// FprintSettings writes the key/value settings listing with aligned equals
// signs.
func FprintSettings(w io.Writer, settings [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, kv := range settings {
		fmt.Fprintf(tw, "%s\t= %s\n", kv[0], kv[1])
	}
	return tw.Flush()
}

// WriteSettings writes the settings listing to a file.
func WriteSettings(settings [][2]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return FprintSettings(f, settings)
}
