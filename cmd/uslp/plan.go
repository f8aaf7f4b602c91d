package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wkg-uslp/internal/config"
	"github.com/wkg-uslp/internal/match"
)

func createPlanCmd() *cobra.Command {
	cfg := config.LoadMatchConfig()

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the predicate processing order and distance matrix sizes",
		Long: `Prints every predicate in the order match processes it, with its subject
count, geohash precision and prefiltered candidate count. The index column
is the value to pass as --start-value to resume before that predicate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := setupLogger(cfg.Debug)

			data, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			engine, err := match.Prepare(cmd.Context(), data, match.Options{StartValue: cfg.StartValue}, logger)
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), engine.MatrixShapes(), engine.Plan())
		},
	}

	bindInputFlags(cmd, &cfg)
	return cmd
}

func printPlan(out io.Writer, shapes []match.MatrixShape, plan []match.PredicatePlan) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PRECISION\tSUBJECT CELLS\tCANDIDATE CELLS")
	for _, s := range shapes {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", s.Precision, s.SubjectPrefixes, s.CandidatePrefixes)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "INDEX\tPREDICATE\tSUBJECTS\tPRECISION\tCANDIDATES\tSTATUS")
	for _, p := range plan {
		status := "pending"
		switch {
		case p.Skipped:
			status = "skipped"
		case p.Eligible == 0:
			status = "no candidates"
		case p.Precision == 0:
			status = "no precision"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n", p.Index, p.Predicate, p.Subjects, p.Precision, p.Eligible, status)
	}
	return tw.Flush()
}
