package model

import "fmt"

// ConfigurationError reports a predicate, literal or type that the loaded
// maps do not cover. The maps are built from the same corpus being matched,
// so this means the input files are stale or mismatched.
type ConfigurationError struct {
	Kind string // "precision", "predicate", "literal", "type"
	Key  string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: no %s entry for %q: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("configuration: no %s entry for %q", e.Kind, e.Key)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// KeyNotFoundError is returned by matrix lookups on an absent row or column key.
type KeyNotFoundError struct {
	Axis string // "row" or "column"
	Key  string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s key %q not found", e.Axis, e.Key)
}

// DataFormatError reports a malformed input row or map entry. Loading stops
// at the first one. Map entries have no row; Column holds the map key.
type DataFormatError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *DataFormatError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: row %d, column %s: %v", e.Source, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s: row %d: %v", e.Source, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s: key %s: %v", e.Source, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }
