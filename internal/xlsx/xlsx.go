// Package xlsx turns spreadsheet worksheets into raw import rows. The header
// row carries the accepted field aliases; alias resolution itself stays in
// the import normalizer.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itam-io/itam-server/internal/importer"
	"github.com/xuri/excelize/v2"
)

// ErrNoRows is returned when the worksheet has no data rows below the header.
var ErrNoRows = errors.New("worksheet has no data rows")

// ParseRows reads the first worksheet: row one is the header, every following
// non-empty row becomes one RawRow keyed by the header cells. Cell values stay
// strings; the normalizer handles typing.
func ParseRows(r io.Reader) ([]importer.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []importer.RawRow
	for _, cells := range rows[1:] {
		row := importer.RawRow{}
		empty := true
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row[header[i]] = cell
			empty = false
		}
		if !empty {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}
