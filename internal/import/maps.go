package import_pkg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wkg-uslp/internal/model"
)

// MapPaths locates the four key/value documents of a run
type MapPaths struct {
	Predicates string
	Literals   string
	Types      string
	Precision  string
}

// LoadMaps reads and validates all four maps.
func LoadMaps(paths MapPaths) (model.Maps, error) {
	var maps model.Maps
	var err error

	if maps.Predicates, err = LoadEmbeddingMap(paths.Predicates); err != nil {
		return maps, err
	}
	if maps.Literals, err = LoadEmbeddingMap(paths.Literals); err != nil {
		return maps, err
	}
	if maps.Types, err = LoadTypeMap(paths.Types); err != nil {
		return maps, err
	}
	if maps.Precision, err = LoadPrecisionMap(paths.Precision); err != nil {
		return maps, err
	}
	return maps, nil
}

// LoadEmbeddingMap reads a key -> vector document and checks every vector's dimension.
func LoadEmbeddingMap(path string) (model.EmbeddingMap, error) {
	var m model.EmbeddingMap
	if err := decodeFile(path, &m); err != nil {
		return nil, err
	}
	for k, v := range m {
		if err := model.CheckVector(v); err != nil {
			return nil, &model.DataFormatError{Source: path, Column: k, Err: err}
		}
	}
	return m, nil
}

// LoadTypeMap reads the type embeddings. The "unknown" type always maps to
// the zero vector so untyped candidates get no type similarity.
func LoadTypeMap(path string) (model.EmbeddingMap, error) {
	m, err := LoadEmbeddingMap(path)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = make(model.EmbeddingMap)
	}
	m[model.Unknown] = make([]float32, model.EmbeddingDim)
	return m, nil
}

// LoadPrecisionMap reads the predicate -> geohash precision document.
func LoadPrecisionMap(path string) (model.PrecisionMap, error) {
	var m model.PrecisionMap
	if err := decodeFile(path, &m); err != nil {
		return nil, err
	}
	for k, p := range m {
		if p < 1 || p > model.MaxGeohashPrecision {
			return nil, &model.DataFormatError{Source: path, Column: k,
				Err: fmt.Errorf("precision %d outside 1..%d", p, model.MaxGeohashPrecision)}
		}
	}
	return m, nil
}

// decodeFile unmarshals JSON, or YAML for .yaml/.yml files
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read map %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return &model.DataFormatError{Source: path, Err: err}
	}
	return nil
}
