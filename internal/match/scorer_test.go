package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkg-uslp/internal/model"
	"github.com/wkg-uslp/internal/prefilter"
)

func newScorer(t *testing.T, data *model.Dataset) (*Engine, *Scorer) {
	t.Helper()
	e := prepare(t, data, Options{})
	s, err := NewScorer(false, data.Candidates, data.Maps.Precision, e.tables, e.prefilter, NewCache())
	require.NoError(t, err)
	return e, s
}

func TestScorer_TieKeepsFirstCandidate(t *testing.T) {
	data := fixture()
	twin := data.Candidates[0]
	twin.URI = "C1-twin"
	data.Candidates = append([]model.Candidate{twin}, data.Candidates...)

	_, s := newScorer(t, data)
	r, err := s.Score(data.Subjects[1])
	require.NoError(t, err)

	assert.Equal(t, "C1-twin", r.URI)
	assert.Equal(t, 3.5, r.Score)
}

func TestScorer_CacheIsTransparent(t *testing.T) {
	data := fixture()
	_, shared := newScorer(t, data)

	for _, subj := range data.Subjects {
		if subj.Predicate == "hasCountry" {
			continue
		}
		cached, err := shared.Score(subj)
		require.NoError(t, err)

		_, fresh := newScorer(t, data)
		direct, err := fresh.Score(subj)
		require.NoError(t, err)

		assert.Equal(t, direct, cached, subj.URI)
	}

	st := shared.Stats()
	assert.Equal(t, 1, st.Hits)
	assert.Equal(t, 3, st.Misses)
}

func TestScorer_CacheKeyUsesPrefix(t *testing.T) {
	data := fixture()
	_, s := newScorer(t, data)

	// same six-character cell, different tails
	a := model.Subject{URI: "a", Predicate: "inCounty", Literal: "Springfield", Geohash: "u4pruy00"}
	b := model.Subject{URI: "b", Predicate: "inCounty", Literal: "Springfield", Geohash: "u4pruyzz"}

	_, err := s.Score(a)
	require.NoError(t, err)
	evals := s.Stats().Evaluations
	_, err = s.Score(b)
	require.NoError(t, err)

	assert.Equal(t, evals, s.Stats().Evaluations)
	assert.Equal(t, 1, s.Stats().Hits)
}

func TestScorer_MissingPrecision(t *testing.T) {
	data := fixture()
	_, s := newScorer(t, data)

	_, err := s.Score(model.Subject{URI: "x", Predicate: "bornIn", Literal: "Paris", Geohash: "u4pruy"})

	var cfg *model.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "precision", cfg.Kind)
	assert.Equal(t, "bornIn", cfg.Key)
}

func TestScorer_NoEligibleCandidates(t *testing.T) {
	data := fixture()
	_, s := newScorer(t, data)

	_, err := s.Score(data.Subjects[2])
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestScorer_PrefilterRestrictsCandidates(t *testing.T) {
	data := fixture()
	data.Candidates[0].LabelEmbedding = unit(7)
	data.Candidates = append(data.Candidates, model.Candidate{
		URI: "C9", Type: "City", Geohash: "u4pruyq1", LabelEmbedding: unit(0),
	})
	data.Maps.Types["City"] = unit(1)

	tests := []struct {
		name     string
		rules    []prefilter.Rule
		expected Result
	}{
		{name: "county rule", rules: nil, expected: Result{URI: "C1", Score: 2.5}},
		{name: "no rules", rules: []prefilter.Rule{}, expected: Result{URI: "C9", Score: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := prepare(t, data, Options{Rules: tt.rules})
			s, err := NewScorer(false, data.Candidates, data.Maps.Precision, e.tables, e.prefilter, NewCache())
			require.NoError(t, err)

			r, err := s.Score(data.Subjects[1])
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	k := CacheKey{Prefix: "u4pruy", Predicate: "inCounty", Literal: "Springfield"}

	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Put(k, Result{URI: "C1", Score: 3.5})
	r, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, "C1", r.URI)
	assert.Equal(t, 1, c.Len())
}

func TestPrepare_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prepare(ctx, fixture(), Options{}, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
