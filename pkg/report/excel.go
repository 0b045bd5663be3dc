package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"amrscan/pkg/blast"
)

// column width bounds for the workbook sheets
const (
	minColWidth = 10
	maxColWidth = 50
)

// WriteExcel writes the whole result set as one workbook: Summary, ResFinder,
// PointFinder (when present) and Settings sheets, with frozen header panes
// and columns sized to their content.
func WriteExcel(path string, summary, resfinder, pointfinder *blast.Table, settings [][2]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}
	if err := writeTableSheet(f, "Summary", summary); err != nil {
		return err
	}

	if err := writeTableSheet(f, "ResFinder", resfinder); err != nil {
		return err
	}

	if pointfinder != nil {
		if err := writeTableSheet(f, "PointFinder", pointfinder); err != nil {
			return err
		}
	}

	if err := writeSettingsSheet(f, settings); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", path, err)
	}
	return nil
}

func writeTableSheet(f *excelize.File, name string, t *blast.Table) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	widths := make([]int, len(t.Columns()))

	for col, header := range t.Columns() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
		widths[col] = len(header)
	}

	for r, row := range t.Rows() {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
			if len(value) > widths[col] {
				widths[col] = len(value)
			}
		}
	}

	for col, width := range widths {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, colWidth(width)); err != nil {
			return err
		}
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}

func writeSettingsSheet(f *excelize.File, settings [][2]string) error {
	const name = "Settings"
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	keyWidth, valueWidth := len("Key"), len("Value")
	if err := f.SetCellValue(name, "A1", "Key"); err != nil {
		return err
	}
	if err := f.SetCellValue(name, "B1", "Value"); err != nil {
		return err
	}

	for i, kv := range settings {
		keyCell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, keyCell, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(name, valueCell, kv[1]); err != nil {
			return err
		}
		if len(kv[0]) > keyWidth {
			keyWidth = len(kv[0])
		}
		if len(kv[1]) > valueWidth {
			valueWidth = len(kv[1])
		}
	}

	if err := f.SetColWidth(name, "A", "A", colWidth(keyWidth)); err != nil {
		return err
	}
	return f.SetColWidth(name, "B", "B", colWidth(valueWidth))
}

func colWidth(chars int) float64 {
	w := chars + 2
	if w < minColWidth {
		w = minColWidth
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	return float64(w)
}
