package config

import (
	"fmt"
	"unicode/utf8"
)

// Source values for MatchConfig.Source
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// MatchConfig collects the paths and knobs of a matching run.
// Defaults come from USLP_* variables; command flags override them.
type MatchConfig struct {
	Source        string
	CandidateFile string
	SubjectFile   string
	OutputFile    string

	PredicateMap string
	LiteralMap   string
	TypeMap      string
	PrecisionMap string

	StartValue     int
	PredicateLimit int
	Delimiter      string // output field separator, a single character
	Buffer         int    // writer channel capacity

	StatusAddr string // empty disables the status server
	Debug      bool
}

// LoadMatchConfig builds a MatchConfig from the environment
func LoadMatchConfig() MatchConfig {
	return MatchConfig{
		Source:         GetEnv("USLP_SOURCE", SourceFile),
		CandidateFile:  GetEnv("USLP_CANDIDATE_FILE", "candidates.tsv"),
		SubjectFile:    GetEnv("USLP_SUBJECT_FILE", "subjects.tsv"),
		OutputFile:     GetEnv("USLP_OUTPUT_FILE", "uslp-triplets.tsv"),
		PredicateMap:   GetEnv("USLP_PREDICATE_MAP", "predicate_map.json"),
		LiteralMap:     GetEnv("USLP_LITERAL_MAP", "literal_map.json"),
		TypeMap:        GetEnv("USLP_TYPE_MAP", "type_map.json"),
		PrecisionMap:   GetEnv("USLP_GEOHASH_PRECISION", "geohash_precision.json"),
		StartValue:     GetEnvInt("USLP_START_VALUE", 0),
		PredicateLimit: GetEnvInt("USLP_PREDICATE_LIMIT", 0),
		Delimiter:      GetEnv("USLP_DELIMITER", "\t"),
		Buffer:         GetEnvInt("USLP_BUFFER", 4096),
		StatusAddr:     GetEnv("USLP_STATUS_ADDR", ""),
		Debug:          GetEnvBool("USLP_DEBUG", false),
	}
}

// Comma returns the output delimiter as a rune. Call Validate first.
func (c MatchConfig) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate rejects configurations that cannot start a run
func (c MatchConfig) Validate() error {
	if c.Source != SourceFile && c.Source != SourcePostgres {
		return fmt.Errorf("source must be %q or %q, got %q", SourceFile, SourcePostgres, c.Source)
	}
	if c.StartValue < 0 {
		return fmt.Errorf("start value must be >= 0, got %d", c.StartValue)
	}
	if c.PredicateLimit < 0 {
		return fmt.Errorf("predicate limit must be >= 0, got %d", c.PredicateLimit)
	}

	paths := []struct{ name, path string }{
		{"output file", c.OutputFile},
		{"predicate map", c.PredicateMap},
		{"literal map", c.LiteralMap},
		{"type map", c.TypeMap},
		{"precision map", c.PrecisionMap},
	}
	if c.Source == SourceFile {
		paths = append(paths,
			struct{ name, path string }{"candidate file", c.CandidateFile},
			struct{ name, path string }{"subject file", c.SubjectFile})
	}
	for _, p := range paths {
		if p.path == "" {
			return fmt.Errorf("%s path is empty", p.name)
		}
	}

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	switch r := c.Comma(); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("invalid delimiter %q", r)
	}
	return nil
}
