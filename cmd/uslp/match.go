package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wkg-uslp/internal/config"
	"github.com/wkg-uslp/internal/db"
	import_pkg "github.com/wkg-uslp/internal/import"
	"github.com/wkg-uslp/internal/match"
	"github.com/wkg-uslp/internal/model"
	"github.com/wkg-uslp/internal/output"
	"github.com/wkg-uslp/internal/web"
)

// bindInputFlags registers the dataset flags shared by match and plan
func bindInputFlags(cmd *cobra.Command, cfg *config.MatchConfig) {
	f := cmd.Flags()
	f.StringVar(&cfg.Source, "source", cfg.Source, "where to read candidates and subjects from: file or postgres")
	f.StringVar(&cfg.CandidateFile, "candidate-file", cfg.CandidateFile, "candidate table (.csv or .tsv)")
	f.StringVar(&cfg.SubjectFile, "subject-file", cfg.SubjectFile, "subject table (.csv or .tsv)")
	f.StringVar(&cfg.PrecisionMap, "geohash-precision", cfg.PrecisionMap, "predicate to geohash precision map (.json or .yaml)")
	f.StringVar(&cfg.PredicateMap, "predicate-map", cfg.PredicateMap, "predicate embedding map")
	f.StringVar(&cfg.LiteralMap, "literal-map", cfg.LiteralMap, "literal embedding map")
	f.StringVar(&cfg.TypeMap, "type-map", cfg.TypeMap, "type embedding map")
	f.IntVar(&cfg.StartValue, "start-value", cfg.StartValue, "number of predicates to skip, in processing order")
	f.IntVar(&cfg.PredicateLimit, "predicate-limit", cfg.PredicateLimit, "number of predicates to process after the skip, 0 for all")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
}

func createMatchCmd() *cobra.Command {
	cfg := config.LoadMatchConfig()

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve every subject literal to its best candidate",
		Long: `Scores each subject against the prefiltered candidates and streams one
row per subject to the output file. Use --start-value to resume an
interrupted run; the output is then appended without a header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), cfg)
		},
	}

	bindInputFlags(cmd, &cfg)
	f := cmd.Flags()
	f.StringVar(&cfg.OutputFile, "output-file", cfg.OutputFile, "result table")
	f.StringVar(&cfg.Delimiter, "delimiter", cfg.Delimiter, "output field delimiter")
	f.IntVar(&cfg.Buffer, "buffer", cfg.Buffer, "rows queued between scorer and writer")
	f.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "serve run status on this address, e.g. :8080")

	return cmd
}

func runMatch(ctx context.Context, cfg config.MatchConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg.Debug)

	data, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	engine, err := match.Prepare(ctx, data, match.Options{
		StartValue:     cfg.StartValue,
		PredicateLimit: cfg.PredicateLimit,
		Debug:          cfg.Debug,
	}, logger)
	if err != nil {
		return err
	}

	writer, err := output.Open(cfg.OutputFile, output.WriterOptions{
		Comma:  cfg.Comma(),
		Buffer: cfg.Buffer,
		Append: cfg.StartValue > 0,
	})
	if err != nil {
		return err
	}

	if cfg.StatusAddr != "" {
		statusCtx, cancel := context.WithCancel(ctx)
		statusDone := make(chan error, 1)
		server := web.NewServer(web.DefaultConfig(cfg.StatusAddr), engine.Progress(), logger)
		go func() { statusDone <- server.Start(statusCtx) }()
		defer func() {
			cancel()
			if serr := <-statusDone; serr != nil {
				logger.Warn("Status server failed", slog.Any("error", serr))
			}
		}()
	}

	logger.Info("Matching",
		slog.String("run_id", engine.RunID()),
		slog.String("output", cfg.OutputFile),
		slog.Int("start_value", cfg.StartValue),
		slog.Int("candidates", len(data.Candidates)),
		slog.Int("subjects", len(data.Subjects)))

	_, runErr := engine.Run(ctx, writer)
	if closeErr := writer.Close(); closeErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("output: %w", closeErr))
	}
	if runErr != nil {
		logger.Error("Matching stopped", slog.Int("rows_written", writer.Written()), slog.Any("error", runErr))
		return runErr
	}
	return nil
}

// loadDataset reads candidates and subjects from the configured source and the four maps from files
func loadDataset(ctx context.Context, cfg config.MatchConfig) (*model.Dataset, error) {
	maps := import_pkg.MapPaths{
		Predicates: cfg.PredicateMap,
		Literals:   cfg.LiteralMap,
		Types:      cfg.TypeMap,
		Precision:  cfg.PrecisionMap,
	}
	if cfg.Source == config.SourceFile {
		return import_pkg.LoadDataset(cfg.CandidateFile, cfg.SubjectFile, maps)
	}

	conn, err := db.NewConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	data := &model.Dataset{}
	if data.Candidates, err = conn.LoadCandidates(ctx); err != nil {
		return nil, err
	}
	if data.Subjects, err = conn.LoadSubjects(ctx); err != nil {
		return nil, err
	}
	if data.Maps, err = import_pkg.LoadMaps(maps); err != nil {
		return nil, err
	}
	return data, nil
}
