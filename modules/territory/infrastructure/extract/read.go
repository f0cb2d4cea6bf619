// Package extract turns tabular territorial extracts into flat rows.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

type Options struct {
	// Columns defaults to DefaultColumns.
	Columns Columns
	// Delimiter separates CSV fields; defaults to a comma.
	Delimiter rune
	// Encoding of CSV input, e.g. "windows-1250". Empty means UTF-8.
	Encoding string
	// Sheet selects the XLSX worksheet; defaults to the first one.
	Sheet string
}

func (o Options) columns() Columns {
	if len(o.Columns) == 0 {
		return DefaultColumns()
	}
	return o.Columns
}

// ReadFile reads an .xlsx workbook or, for any other extension, a CSV file.
func ReadFile(path string, opts Options) ([]territory.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &territory.ImportError{Kind: territory.KindConfiguration, Err: fmt.Errorf("open source: %w", err)}
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(f, opts)
	}
	return ReadCSV(f, opts)
}

// rowMapper resolves header labels to positions once per source.
type rowMapper struct {
	index map[Role]int
	width int
	// pad treats missing trailing cells as empty instead of failing.
	pad bool
}

func newRowMapper(header []string, cols Columns, pad bool) (*rowMapper, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}

	m := &rowMapper{index: make(map[Role]int, len(roles)), pad: pad}
	for _, role := range roles {
		label := cols[role]
		i, ok := positions[label]
		if !ok {
			return nil, parseError(1, fmt.Errorf("%w: %s (header %q)", territory.ErrMissingColumn, role, label))
		}
		m.index[role] = i
		if i+1 > m.width {
			m.width = i + 1
		}
	}
	return m, nil
}

func (m *rowMapper) row(rec []string, line int) (territory.Row, error) {
	if len(rec) < m.width && !m.pad {
		return territory.Row{}, parseError(line, fmt.Errorf("expected at least %d fields, got %d", m.width, len(rec)))
	}

	values := make(map[Role]string, len(roles))
	for _, role := range roles {
		var v string
		if i := m.index[role]; i < len(rec) {
			v = strings.TrimSpace(rec[i])
		}
		if !utf8.ValidString(v) {
			return territory.Row{}, parseError(line, fmt.Errorf("invalid UTF-8 in %s (set the source encoding, e.g. windows-1250)", role))
		}
		if v == "" && !optionalValue[role] {
			return territory.Row{}, parseError(line, fmt.Errorf("%w: %s", territory.ErrEmptyField, role))
		}
		values[role] = v
	}

	return territory.Row{
		Line:             line,
		MunicipalityName: values[RoleMunicipalityName],
		MunicipalityCode: values[RoleMunicipalityCode],
		SubOfficeCode:    values[RoleSubOfficeCode],
		OfficeName:       values[RoleOfficeName],
		OfficeCode:       values[RoleOfficeCode],
		DistrictName:     values[RoleDistrictName],
		DistrictCode:     values[RoleDistrictCode],
		RegionName:       values[RoleRegionName],
		RegionCode:       values[RoleRegionCode],
		RegionNUTSCode:   values[RoleRegionNUTSCode],
	}, nil
}

type recordFunc func() (rec []string, line int, err error)

// collect maps records until next reports io.EOF.
func collect(m *rowMapper, next recordFunc) ([]territory.Row, error) {
	var rows []territory.Row
	for {
		rec, line, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(line, err)
		}
		if blank(rec) {
			continue
		}
		row, err := m.row(rec, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, parseError(0, territory.ErrNoRows)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseError(line int, err error) error {
	var ie *territory.ImportError
	if errors.As(err, &ie) {
		return err
	}
	return &territory.ImportError{Kind: territory.KindParse, Line: line, Err: err}
}
