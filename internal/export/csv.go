// Package export renders display tables to CSV and XLSX. Numeric cells
// arrive pre-formatted so exports match the on-screen values exactly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is a rendered display table: human-readable headers plus rows of
// already formatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// utf8BOM lets spreadsheet software detect the encoding of exported CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the table as UTF-8 CSV with a byte order mark.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
