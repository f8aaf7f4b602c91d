package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wkg-uslp/internal/config"
	"github.com/wkg-uslp/internal/db"
	import_pkg "github.com/wkg-uslp/internal/import"
)

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(false)
			conn, err := db.NewConnection(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Database connection successful!")
			counts, err := conn.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Candidates loaded: %d\n", counts.Candidates)
			fmt.Fprintf(cmd.OutOrStdout(), "Subjects loaded: %d\n", counts.Subjects)
			return nil
		},
	}
}

// createLoadCmd creates a command that copies the candidate and subject tables into Postgres
func createLoadCmd() *cobra.Command {
	cfg := config.LoadMatchConfig()

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import candidate and subject tables into Postgres",
		Long:  "Creates the schema if needed and replaces the contents of the candidates and subjects tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(cfg.Debug)
			ctx := cmd.Context()

			candidates, err := import_pkg.LoadCandidates(cfg.CandidateFile)
			if err != nil {
				return err
			}
			subjects, err := import_pkg.LoadSubjects(cfg.SubjectFile)
			if err != nil {
				return err
			}

			conn, err := db.NewConnection(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.InitSchema(ctx); err != nil {
				return err
			}
			if err := conn.ReplaceCandidates(ctx, candidates); err != nil {
				return fmt.Errorf("candidates: %w", err)
			}
			if err := conn.ReplaceSubjects(ctx, subjects); err != nil {
				return fmt.Errorf("subjects: %w", err)
			}

			logger.Info("Load complete", slog.Int("candidates", len(candidates)), slog.Int("subjects", len(subjects)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.CandidateFile, "candidate-file", cfg.CandidateFile, "candidate table (.csv or .tsv)")
	f.StringVar(&cfg.SubjectFile, "subject-file", cfg.SubjectFile, "subject table (.csv or .tsv)")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	return cmd
}
