package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pgvector/pgvector-go"

	"github.com/wkg-uslp/internal/geo"
	"github.com/wkg-uslp/internal/model"
)

// Schema creates the candidate and subject tables. Row ids keep table order.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS candidates (
	id        BIGSERIAL PRIMARY KEY,
	uri       TEXT NOT NULL,
	label     TEXT NOT NULL DEFAULT '',
	label_en  TEXT NOT NULL DEFAULT '',
	location  TEXT NOT NULL DEFAULT '',
	type      TEXT NOT NULL DEFAULT '',
	geohash   TEXT NOT NULL DEFAULT '',
	label_emb vector(300) NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
	id        BIGSERIAL PRIMARY KEY,
	uri       TEXT NOT NULL,
	predicate TEXT NOT NULL,
	literal   TEXT NOT NULL DEFAULT '',
	location  TEXT NOT NULL DEFAULT '',
	geohash   TEXT NOT NULL DEFAULT ''
);
`

// Counts is the number of rows per table
type Counts struct {
	Candidates int
	Subjects   int
}

// InitSchema creates the tables if they do not exist
func (c *Connection) InitSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Counts returns the row count of both tables
func (c *Connection) Counts(ctx context.Context) (Counts, error) {
	var n Counts
	if err := c.DB.QueryRowContext(ctx, `SELECT count(*) FROM candidates`).Scan(&n.Candidates); err != nil {
		return n, fmt.Errorf("failed to count candidates: %w", err)
	}
	if err := c.DB.QueryRowContext(ctx, `SELECT count(*) FROM subjects`).Scan(&n.Subjects); err != nil {
		return n, fmt.Errorf("failed to count subjects: %w", err)
	}
	return n, nil
}

// LoadCandidates reads the candidate table in id order.
func (c *Connection) LoadCandidates(ctx context.Context) ([]model.Candidate, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT id, uri, label, label_en, location, type, geohash, label_emb
		FROM candidates
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var (
			id       int64
			wkt      string
			labelEmb pgvector.Vector
			cand     model.Candidate
		)
		if err := rows.Scan(&id, &cand.URI, &cand.Label, &cand.LabelEn, &wkt, &cand.Type, &cand.Geohash, &labelEmb); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		cand.LabelEmbedding = labelEmb.Slice()
		if err := model.CheckVector(cand.LabelEmbedding); err != nil {
			return nil, &model.DataFormatError{Source: "candidates", Row: int(id), Column: "label_emb", Err: err}
		}
		if cand.LabelEn == "" {
			cand.LabelEn = model.Unknown
		}
		if cand.Type == "" {
			cand.Type = model.Unknown
		}
		if cand.Location, cand.Geohash, err = locate("candidates", id, wkt, cand.Geohash); err != nil {
			return nil, err
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	slog.Info("Loaded candidates", slog.Int("rows", len(out)))
	return out, nil
}

// LoadSubjects reads the subject table in id order.
func (c *Connection) LoadSubjects(ctx context.Context) ([]model.Subject, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT id, uri, predicate, literal, location, geohash
		FROM subjects
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	var out []model.Subject
	for rows.Next() {
		var (
			id   int64
			wkt  string
			subj model.Subject
		)
		if err := rows.Scan(&id, &subj.URI, &subj.Predicate, &subj.Literal, &wkt, &subj.Geohash); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		if subj.Location, subj.Geohash, err = locate("subjects", id, wkt, subj.Geohash); err != nil {
			return nil, err
		}
		out = append(out, subj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subjects: %w", err)
	}

	slog.Info("Loaded subjects", slog.Int("rows", len(out)))
	return out, nil
}

// ReplaceCandidates swaps the candidate table contents for candidates in a single transaction
func (c *Connection) ReplaceCandidates(ctx context.Context, candidates []model.Candidate) error {
	return c.replace(ctx, "candidates", `
		INSERT INTO candidates (uri, label, label_en, location, type, geohash, label_emb)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		len(candidates), func(i int) []interface{} {
			cand := candidates[i]
			return []interface{}{cand.URI, cand.Label, cand.LabelEn, wktPoint(cand.Location),
				cand.Type, cand.Geohash, pgvector.NewVector(cand.LabelEmbedding)}
		})
}

// ReplaceSubjects swaps the subject table contents for subjects in a single transaction
func (c *Connection) ReplaceSubjects(ctx context.Context, subjects []model.Subject) error {
	return c.replace(ctx, "subjects", `
		INSERT INTO subjects (uri, predicate, literal, location, geohash)
		VALUES ($1, $2, $3, $4, $5)`,
		len(subjects), func(i int) []interface{} {
			s := subjects[i]
			return []interface{}{s.URI, s.Predicate, s.Literal, wktPoint(s.Location), s.Geohash}
		})
}

// replace empties table and inserts n rows; ids restart at 1 so load order is kept.
func (c *Connection) replace(ctx context.Context, table, query string, n int, args func(i int) []interface{}) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err := tx.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func locate(table string, id int64, wkt, gh string) (model.Point, string, error) {
	var loc model.Point
	if wkt != "" {
		p, err := geo.ParseWKTPoint(wkt)
		if err != nil {
			return loc, "", &model.DataFormatError{Source: table, Row: int(id), Column: "location", Err: err}
		}
		loc = p
	}
	switch {
	case gh != "":
		if !geo.ValidGeohash(gh) {
			return loc, "", &model.DataFormatError{Source: table, Row: int(id), Column: "geohash",
				Err: fmt.Errorf("invalid geohash %q", gh)}
		}
		if wkt == "" {
			loc = geo.Center(gh)
		}
		return loc, gh, nil
	case wkt != "":
		return loc, geo.Encode(loc, model.DefaultGeohashPrecision), nil
	}
	return loc, "", &model.DataFormatError{Source: table, Row: int(id), Column: "location",
		Err: errors.New("neither location nor geohash given")}
}

func wktPoint(p model.Point) string {
	return "POINT(" + strconv.FormatFloat(p.Lon, 'g', -1, 64) + " " + strconv.FormatFloat(p.Lat, 'g', -1, 64) + ")"
}
