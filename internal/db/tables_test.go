package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wkg-uslp/internal/model"
)

func TestDSNFromEnv(t *testing.T) {
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGPORT", "6543")
	t.Setenv("PGUSER", "wkg")
	t.Setenv("PGPASSWORD", "secret")
	t.Setenv("PGDATABASE", "graph")
	t.Setenv("PGSSLMODE", "")

	assert.Equal(t, "host=db.internal port=6543 user=wkg password=secret dbname=graph sslmode=disable", DSNFromEnv())
}

func TestLocate(t *testing.T) {
	t.Run("geohash derived from wkt", func(t *testing.T) {
		loc, gh, err := locate("candidates", 1, "POINT(10.40744 57.64911)", "")
		require.NoError(t, err)
		assert.Equal(t, "u4pruy", gh)
		assert.InDelta(t, 10.40744, loc.Lon, 1e-9)
	})

	t.Run("geohash kept", func(t *testing.T) {
		_, gh, err := locate("candidates", 1, "POINT(10.40744 57.64911)", "u4pruydqqvj")
		require.NoError(t, err)
		assert.Equal(t, "u4pruydqqvj", gh)
	})

	t.Run("nothing given", func(t *testing.T) {
		_, _, err := locate("subjects", 7, "", "")

		var dfe *model.DataFormatError
		require.ErrorAs(t, err, &dfe)
		assert.Equal(t, "subjects", dfe.Source)
		assert.Equal(t, 7, dfe.Row)
	})
}

func startPostgres(t *testing.T) *Connection {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("database"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err, "error starting postgres container")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.InitSchema(ctx))
	return conn
}

func embedding(hot int) []float32 {
	v := make([]float32, model.EmbeddingDim)
	v[hot] = 0.5
	return v
}

func TestConnection_RoundTrip(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	candidates := []model.Candidate{
		{URI: "wkg:1", Label: "Springfield", LabelEn: model.Unknown, Location: model.Point{Lon: 10.40744, Lat: 57.64911},
			Type: "County", Geohash: "u4pruy", LabelEmbedding: embedding(0)},
		{URI: "wkg:2", Label: "Springfield", LabelEn: "Springfield", Location: model.Point{Lon: -122.4, Lat: 37.7},
			Type: "City", LabelEmbedding: embedding(1)},
	}
	subjects := []model.Subject{
		{URI: "wkg:10", Predicate: "inCounty", Literal: "Springfield", Location: model.Point{Lon: 10.40744, Lat: 57.64911}, Geohash: "u4pruydq"},
	}

	require.NoError(t, conn.ReplaceCandidates(ctx, candidates))
	require.NoError(t, conn.ReplaceSubjects(ctx, subjects))

	counts, err := conn.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Candidates: 2, Subjects: 1}, counts)

	gotCandidates, err := conn.LoadCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, gotCandidates, 2)
	assert.Equal(t, "wkg:1", gotCandidates[0].URI)
	assert.Equal(t, embedding(0), gotCandidates[0].LabelEmbedding)
	assert.Equal(t, "u4pruy", gotCandidates[0].Geohash)
	assert.Equal(t, "City", gotCandidates[1].Type)
	assert.NotEmpty(t, gotCandidates[1].Geohash, "geohash derived from location")

	gotSubjects, err := conn.LoadSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, gotSubjects, 1)
	assert.Equal(t, subjects[0].Geohash, gotSubjects[0].Geohash)
	assert.Equal(t, "inCounty", gotSubjects[0].Predicate)
}

func TestConnection_ReloadReplaces(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	first := []model.Candidate{
		{URI: "wkg:1", Label: "Springfield", LabelEn: model.Unknown, Location: model.Point{Lon: 10.40744, Lat: 57.64911},
			Type: "County", Geohash: "u4pruy", LabelEmbedding: embedding(0)},
		{URI: "wkg:2", Label: "Paris", LabelEn: "Paris", Location: model.Point{Lon: 2.35, Lat: 48.85},
			Type: "City", LabelEmbedding: embedding(1)},
	}
	subjects := []model.Subject{
		{URI: "wkg:10", Predicate: "inCounty", Literal: "Springfield", Location: model.Point{Lon: 10.40744, Lat: 57.64911}, Geohash: "u4pruydq"},
		{URI: "wkg:11", Predicate: "locatedIn", Literal: "Paris", Location: model.Point{Lon: 2.35, Lat: 48.85}, Geohash: "u09tvw"},
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.ReplaceCandidates(ctx, first))
		require.NoError(t, conn.ReplaceSubjects(ctx, subjects))

		counts, err := conn.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, Counts{Candidates: 2, Subjects: 2}, counts, "load %d", i+1)
	}

	require.NoError(t, conn.ReplaceCandidates(ctx, first[1:]))
	got, err := conn.LoadCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "wkg:2", got[0].URI)

	gotSubjects, err := conn.LoadSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wkg:10", "wkg:11"}, []string{gotSubjects[0].URI, gotSubjects[1].URI})
}
