package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

// ReadXLSX reads the first worksheet, or opts.Sheet, of a workbook. The
// first non-empty row is the header.
func ReadXLSX(r io.Reader, opts Options) ([]territory.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseError(0, fmt.Errorf("open workbook: %w", err))
	}
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, parseError(0, fmt.Errorf("workbook has no sheets"))
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &territory.ImportError{Kind: territory.KindConfiguration, Err: fmt.Errorf("sheet %q does not exist", sheet)}
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, parseError(0, fmt.Errorf("read sheet %q: %w", sheet, err))
	}

	i := 0
	for i < len(grid) && blank(grid[i]) {
		i++
	}
	if i == len(grid) {
		return nil, parseError(0, fmt.Errorf("missing header"))
	}
	header := make([]string, len(grid[i]))
	for j, h := range grid[i] {
		header[j] = strings.TrimSpace(h)
	}
	// Trailing empty cells are omitted by GetRows, so short rows are padded.
	m, err := newRowMapper(header, opts.columns(), true)
	if err != nil {
		return nil, err
	}

	next := i + 1
	return collect(m, func() ([]string, int, error) {
		if next >= len(grid) {
			return nil, 0, io.EOF
		}
		rec := grid[next]
		next++
		return rec, next, nil
	})
}
