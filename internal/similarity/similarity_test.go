package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkg-uslp/internal/model"
)

func vec(vals ...float32) []float32 {
	v := make([]float32, model.EmbeddingDim)
	copy(v, vals)
	return v
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: vec(1, 2, 3), b: vec(1, 2, 3), want: 1},
		{name: "scaled", a: vec(1, 2, 3), b: vec(2, 4, 6), want: 1},
		{name: "orthogonal", a: vec(1, 0), b: vec(0, 1), want: 0},
		{name: "opposite", a: vec(1, 1), b: vec(-1, -1), want: -1},
		{name: "zero vector", a: vec(), b: vec(1, 2), want: 0},
		{name: "both zero", a: vec(), b: vec(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, -1.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}

	assert.Equal(t, 0.0, Cosine(vec(), vec(3, 4)), "zero vector similarity is exactly 0")
}

func TestBuildLiteralMatrix(t *testing.T) {
	candidates := []model.Candidate{
		{URI: "wkg:C1", LabelEmbedding: vec(1, 0)},
		{URI: "wkg:C2", LabelEmbedding: vec(0, 1)},
	}
	literals := model.EmbeddingMap{
		"Springfield": vec(1, 0),
		"Shelbyville": vec(0, 2),
		"nowhere":     vec(),
	}

	m := BuildLiteralMatrix(candidates, literals)
	rows, cols := m.Shape()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)

	v, err := m.Get(0, "Springfield")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-9)

	v, err = m.Get(1, "Springfield")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9)

	v, err = m.Get(1, "Shelbyville")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-9)

	v, err = m.Get(0, "nowhere")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = m.Get(0, "Capital City")
	assert.Error(t, err)
}

func TestBuildPredicateMatrix(t *testing.T) {
	types := model.EmbeddingMap{
		"County":      vec(1, 0),
		"City":        vec(0, 1),
		model.Unknown: vec(),
	}
	predicates := model.EmbeddingMap{
		"wkgs:partOfCounty": vec(1, 0.1),
	}

	m := BuildPredicateMatrix(types, predicates)

	county, err := m.Get("County", "wkgs:partOfCounty")
	require.NoError(t, err)
	city, err := m.Get("City", "wkgs:partOfCounty")
	require.NoError(t, err)
	unknown, err := m.Get(model.Unknown, "wkgs:partOfCounty")
	require.NoError(t, err)

	assert.Greater(t, county, city)
	assert.Equal(t, 0.0, unknown)
}

func TestBuildContainmentMatrix(t *testing.T) {
	m := BuildContainmentMatrix(
		[]string{"wkgs:partOfCounty", "wkgs:isInCountry", "wkgs:addrCity"},
		[]string{"County", "Country", "City", "city", model.Unknown},
	)

	tests := []struct {
		predicate, typ string
		want           float64
	}{
		{"wkgs:partOfCounty", "County", ContainmentBonus},
		{"wkgs:partOfCounty", "Country", 0},
		{"wkgs:isInCountry", "Country", ContainmentBonus},
		{"wkgs:isInCountry", "County", 0},
		{"wkgs:addrCity", "City", ContainmentBonus},
		{"wkgs:addrCity", "city", 0},
		{"wkgs:addrCity", model.Unknown, 0},
	}
	for _, tt := range tests {
		got, err := m.Get(tt.predicate, tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s contains %s", tt.predicate, tt.typ)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(model.EmbeddingMap{"b": nil, "a": nil, "c": nil})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
