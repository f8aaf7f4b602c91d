package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkg-uslp/internal/model"
)

func TestParseWKTPoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.Point
		wantErr bool
	}{
		{name: "graph exporter form", input: "Point(14.5058 46.0569)", want: model.Point{Lon: 14.5058, Lat: 46.0569}},
		{name: "upper case with spaces", input: "POINT ( -0.1276 51.5072 )", want: model.Point{Lon: -0.1276, Lat: 51.5072}},
		{name: "scientific notation", input: "Point(1e1 -2.5E1)", want: model.Point{Lon: 10, Lat: -25}},
		{name: "linestring rejected", input: "LineString(1 2, 3 4)", wantErr: true},
		{name: "missing coordinate", input: "Point(14.5)", wantErr: true},
		{name: "latitude out of range", input: "Point(10 95)", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWKTPoint(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Lon, got.Lon, 1e-9)
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "u4p", Prefix("u4pruy", 3))
	assert.Equal(t, "u4pruy", Prefix("u4pruy", 6))
	assert.Equal(t, "9q8yy", Prefix("9q8yy", 6), "short hashes are returned whole")
}

func TestValidGeohash(t *testing.T) {
	assert.True(t, ValidGeohash("u4pruy"))
	assert.True(t, ValidGeohash("9q8yy"))
	assert.False(t, ValidGeohash(""))
	assert.False(t, ValidGeohash("u4pa"), "a is not in the geohash alphabet")
	assert.False(t, ValidGeohash("U4PRUY"), "geohashes are lower case")
}

func TestEncodeCenterRoundTrip(t *testing.T) {
	p := model.Point{Lon: 10.40744, Lat: 57.64911}
	gh := Encode(p, 6)
	assert.Equal(t, "u4pruy", gh)

	c := Center(gh)
	assert.InDelta(t, p.Lat, c.Lat, 0.01)
	assert.InDelta(t, p.Lon, c.Lon, 0.01)
}

func TestHaversine(t *testing.T) {
	london := model.Point{Lon: -0.1276, Lat: 51.5072}
	paris := model.Point{Lon: 2.3522, Lat: 48.8566}

	assert.InDelta(t, 343.5, Haversine(london, paris), 1.0)
	assert.Equal(t, 0.0, Haversine(london, london))
	assert.InDelta(t, Haversine(london, paris), Haversine(paris, london), 1e-9, "distance is symmetric")
}

func TestGeohashDistance(t *testing.T) {
	assert.Equal(t, 0.0, GeohashDistance("u4pruy", "u4pruy"))

	near := GeohashDistance("u4pruy", "u4pruv")
	far := GeohashDistance("u4pruy", "9q8yy")
	assert.Greater(t, far, near)
	assert.Greater(t, far, 5000.0, "Denmark to San Francisco is several thousand km")
}
