package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVector(t *testing.T) {
	with := func(i int, x float32) []float32 {
		v := make([]float32, EmbeddingDim)
		v[i] = x
		return v
	}

	tests := []struct {
		name    string
		vector  []float32
		wantErr string
	}{
		{name: "zero vector", vector: make([]float32, EmbeddingDim)},
		{name: "finite values", vector: with(3, -2.5)},
		{name: "short", vector: []float32{1, 2}, wantErr: "2 dimensions"},
		{name: "nan", vector: with(0, float32(math.NaN())), wantErr: "component 0"},
		{name: "positive infinity", vector: with(299, float32(math.Inf(1))), wantErr: "component 299"},
		{name: "negative infinity", vector: with(12, float32(math.Inf(-1))), wantErr: "component 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVector(tt.vector)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPrecisionMap_Precisions(t *testing.T) {
	pm := PrecisionMap{"inCounty": 6, "locatedIn": 4, "hasCountry": 6}
	assert.Equal(t, []int{4, 6}, pm.Precisions())
}
