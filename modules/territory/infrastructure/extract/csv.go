package extract

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

// ReadCSV parses a header row followed by one row per municipality.
func ReadCSV(r io.Reader, opts Options) ([]territory.Row, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, &territory.ImportError{Kind: territory.KindConfiguration, Err: err}
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	header, err := readHeader(cr)
	if err != nil {
		return nil, parseError(1, err)
	}
	m, err := newRowMapper(header, opts.columns(), false)
	if err != nil {
		return nil, err
	}

	return collect(m, func() ([]string, int, error) {
		rec, err := cr.Read()
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, pe.StartLine, pe.Err
			}
			return nil, 0, err
		}
		line, _ := cr.FieldPos(0)
		return rec, line, nil
	})
}

// IsSupportedEncoding reports whether name is empty, UTF-8 or a label
// known to the WHATWG encoding index.
func IsSupportedEncoding(name string) bool {
	if isUTF8(name) {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	default:
		return false
	}
}

func decode(r io.Reader, name string) (io.Reader, error) {
	if isUTF8(name) {
		return stripUTF8BOM(bufio.NewReader(r)), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
	return enc.NewDecoder().Reader(r), nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, fmt.Errorf("invalid header encoding (set the source encoding, e.g. windows-1250)")
		}
	}
	return h, nil
}
