package import_pkg

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/wkg-uslp/internal/geo"
	"github.com/wkg-uslp/internal/model"
)

// Candidate table columns: uri,label,label_en,location,type,geohash,label_emb0..label_emb299
var candidateColumns = []string{"uri", "label", "location"}

// Subject table columns: uri,predicate,literal,location,geohash
var subjectColumns = []string{"uri", "predicate", "literal"}

// EmbeddingColumn names the i-th label embedding column
func EmbeddingColumn(i int) string {
	return "label_emb" + strconv.Itoa(i)
}

// LoadCandidates reads the candidate table at path
func LoadCandidates(path string) ([]model.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates %s: %w", path, err)
	}
	defer f.Close()
	return ReadCandidates(path, f, DelimiterFor(path))
}

// ReadCandidates parses a candidate table. Missing English labels and types
// become "unknown"; a blank geohash is derived from the WKT location.
func ReadCandidates(source string, r io.Reader, comma rune) ([]model.Candidate, error) {
	t, err := OpenTable(source, r, comma)
	if err != nil {
		return nil, err
	}
	if err := t.Require(candidateColumns...); err != nil {
		return nil, err
	}
	embCols := make([]string, model.EmbeddingDim)
	for i := range embCols {
		embCols[i] = EmbeddingColumn(i)
	}
	if err := t.Require(embCols...); err != nil {
		return nil, err
	}

	return ImportTable(t, func(rec []string) (model.Candidate, error) {
		c := model.Candidate{
			URI:     t.Field(rec, "uri"),
			Label:   t.Field(rec, "label"),
			LabelEn: orUnknown(t.Field(rec, "label_en")),
			Type:    orUnknown(t.Field(rec, "type")),
		}
		if c.URI == "" {
			return c, t.Errorf("uri", "empty uri")
		}

		loc, gh, err := locate(t, rec)
		if err != nil {
			return c, err
		}
		c.Location, c.Geohash = loc, gh

		c.LabelEmbedding = make([]float32, model.EmbeddingDim)
		for i, col := range embCols {
			v, err := strconv.ParseFloat(t.Field(rec, col), 32)
			if err != nil {
				return c, t.Errorf(col, "not a number: %w", err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return c, t.Errorf(col, "not a finite number: %v", v)
			}
			c.LabelEmbedding[i] = float32(v)
		}
		return c, nil
	})
}

// LoadSubjects reads the subject table at path
func LoadSubjects(path string) ([]model.Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subjects %s: %w", path, err)
	}
	defer f.Close()
	return ReadSubjects(path, f, DelimiterFor(path))
}

// ReadSubjects parses a subject table
func ReadSubjects(source string, r io.Reader, comma rune) ([]model.Subject, error) {
	t, err := OpenTable(source, r, comma)
	if err != nil {
		return nil, err
	}
	if err := t.Require(subjectColumns...); err != nil {
		return nil, err
	}

	return ImportTable(t, func(rec []string) (model.Subject, error) {
		s := model.Subject{
			URI:       t.Field(rec, "uri"),
			Predicate: t.Field(rec, "predicate"),
			Literal:   t.Field(rec, "literal"),
		}
		if s.URI == "" {
			return s, t.Errorf("uri", "empty uri")
		}
		if s.Predicate == "" {
			return s, t.Errorf("predicate", "empty predicate")
		}

		loc, gh, err := locate(t, rec)
		if err != nil {
			return s, err
		}
		s.Location, s.Geohash = loc, gh
		return s, nil
	})
}

// locate parses the WKT location and resolves the geohash, deriving it at
// the default precision when the column is blank.
func locate(t *Table, rec []string) (model.Point, string, error) {
	var loc model.Point
	wkt := t.Field(rec, "location")
	gh := t.Field(rec, "geohash")

	if wkt != "" {
		p, err := geo.ParseWKTPoint(wkt)
		if err != nil {
			return loc, "", t.Errorf("location", "%w", err)
		}
		loc = p
	}

	switch {
	case gh != "":
		if !geo.ValidGeohash(gh) {
			return loc, "", t.Errorf("geohash", "invalid geohash %q", gh)
		}
		if wkt == "" {
			loc = geo.Center(gh)
		}
	case wkt != "":
		gh = geo.Encode(loc, model.DefaultGeohashPrecision)
	default:
		return loc, "", t.Errorf("location", "neither location nor geohash given")
	}
	return loc, gh, nil
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}

// LoadDataset reads both tables and all maps from files
func LoadDataset(candidatePath, subjectPath string, maps MapPaths) (*model.Dataset, error) {
	candidates, err := LoadCandidates(candidatePath)
	if err != nil {
		return nil, err
	}
	subjects, err := LoadSubjects(subjectPath)
	if err != nil {
		return nil, err
	}
	m, err := LoadMaps(maps)
	if err != nil {
		return nil, err
	}
	return &model.Dataset{Candidates: candidates, Subjects: subjects, Maps: m}, nil
}
