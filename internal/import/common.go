package import_pkg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/wkg-uslp/internal/model"
)

// progressEvery controls how often long imports log a progress line
const progressEvery = 10000

// Table reads a delimited file with a header row, addressing fields by column name
type Table struct {
	source  string
	reader  *csv.Reader
	columns map[string]int
	row     int // 1-based, the header is row 1
}

// DelimiterFor picks the field separator from a file extension: tab for
// .tsv and .tab, comma for everything else.
func DelimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// OpenTable reads the header of r and indexes its columns.
func OpenTable(source string, r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", source, err)
	}
	reader.FieldsPerRecord = len(header)

	t := &Table{source: source, reader: reader, columns: make(map[string]int, len(header)), row: 1}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}
	return t, nil
}

// Require fails if any of cols is absent from the header
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.columns[c]; !ok {
			return t.fail(c, errors.New("missing column"))
		}
	}
	return nil
}

// Has reports whether the header contains col
func (t *Table) Has(col string) bool {
	_, ok := t.columns[col]
	return ok
}

// Next returns the next record, or io.EOF at the end of the table.
func (t *Table) Next() ([]string, error) {
	rec, err := t.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	t.row++
	if err != nil {
		return nil, t.fail("", err)
	}
	return rec, nil
}

// Field returns the trimmed value of col in rec, or "" if the column is absent.
func (t *Table) Field(rec []string, col string) string {
	i, ok := t.columns[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Errorf builds a DataFormatError for col on the current row
func (t *Table) Errorf(col string, format string, args ...interface{}) error {
	return t.fail(col, fmt.Errorf(format, args...))
}

// ImportTable maps every record of t with mapFunc. The first mapping error
// stops the import.
func ImportTable[T any](t *Table, mapFunc func(rec []string) (T, error)) ([]T, error) {
	var out []T
	for {
		rec, err := t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		item, err := mapFunc(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, item)

		if len(out)%progressEvery == 0 {
			slog.Debug("Importing", slog.String("source", t.source), slog.Int("rows", len(out)))
		}
	}

	slog.Info("Import complete", slog.String("source", t.source), slog.Int("rows", len(out)))
	return out, nil
}

func (t *Table) fail(col string, err error) error {
	return &model.DataFormatError{Source: t.source, Row: t.row, Column: col, Err: err}
}
