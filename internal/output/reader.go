package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wkg-uslp/internal/model"
)

// DefaultCutOff is the minimum score a match needs to be exported as a link.
const DefaultCutOff = 1.5

// LinkHeader heads an exported link file.
var LinkHeader = []string{"s", "p", "o", "literal", "score"}

// ReadMatches loads a match file written by Writer. Rows are returned in file
// order; a repeated header (restart appended to a file that had one) is skipped.
func ReadMatches(r io.Reader, comma rune) ([]model.Match, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = len(Header)
	cr.LazyQuotes = true

	var out []model.Match
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, &model.DataFormatError{Source: "matches", Row: line, Err: err}
		}
		if rec[0] == Header[0] && rec[4] == Header[4] {
			continue
		}
		score, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, &model.DataFormatError{Source: "matches", Row: line, Column: "score", Err: err}
		}
		out = append(out, model.Match{S: rec[0], P: rec[1], Literal: rec[2], O: rec[3], Score: score})
	}
}

// ReadMatchesFile opens path and calls ReadMatches
func ReadMatchesFile(path string, comma rune) ([]model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches %s: %w", path, err)
	}
	defer f.Close()
	return ReadMatches(f, comma)
}

// Filter keeps matches scoring strictly above cutOff.
func Filter(matches []model.Match, cutOff float64) []model.Match {
	var out []model.Match
	for _, m := range matches {
		if m.Score > cutOff {
			out = append(out, m)
		}
	}
	return out
}

// WriteLinks writes accepted matches as subject/predicate/object links.
func WriteLinks(w io.Writer, comma rune, links []model.Match) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(LinkHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range links {
		rec := []string{m.S, m.P, m.O, m.Literal, strconv.FormatFloat(m.Score, 'g', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write link %s: %w", m.S, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
