package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/wkg-uslp/internal/model"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

var wktPoint = regexp.MustCompile(`(?i)^\s*point\s*\(\s*([-+0-9.eE]+)\s+([-+0-9.eE]+)\s*\)\s*$`)

// ParseWKTPoint parses "Point(lon lat)" as produced by the graph exporter.
func ParseWKTPoint(wkt string) (model.Point, error) {
	m := wktPoint.FindStringSubmatch(wkt)
	if m == nil {
		return model.Point{}, fmt.Errorf("not a WKT point: %q", wkt)
	}
	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid longitude %q: %w", m[1], err)
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid latitude %q: %w", m[2], err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return model.Point{}, fmt.Errorf("coordinates out of range: lon=%g lat=%g", lon, lat)
	}
	return model.Point{Lon: lon, Lat: lat}, nil
}

// Encode returns the geohash of p at the given precision.
func Encode(p model.Point, precision int) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, precision)
}

// ValidGeohash reports whether s is a non-empty base32 geohash.
func ValidGeohash(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(base32, r) {
			return false
		}
	}
	return true
}

// Prefix truncates a geohash to precision characters. Shorter hashes are returned whole.
func Prefix(gh string, precision int) string {
	if precision >= len(gh) {
		return gh
	}
	return gh[:precision]
}

// Center decodes a geohash cell and returns its centre point.
func Center(gh string) model.Point {
	c := geohash.Decode(gh).Center()
	return model.Point{Lon: c.Lng(), Lat: c.Lat()}
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// GeohashDistance estimates the distance in km between two geohash cells from their centres.
func GeohashDistance(a, b string) float64 {
	if a == b {
		return 0
	}
	return Haversine(Center(a), Center(b))
}
