package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/wkg-uslp/internal/config"
	"github.com/wkg-uslp/internal/output"
)

func createExportCmd() *cobra.Command {
	var (
		input     string
		outPath   string
		delimiter string
		cutOff    float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write accepted links from a match result table",
		Long: `Reads a result table written by match and keeps the rows scoring above
--cut-off, written as s, p, o, literal, score.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(false)
			if utf8.RuneCountInString(delimiter) != 1 {
				return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
			}
			comma, _ := utf8.DecodeRuneInString(delimiter)

			matches, err := output.ReadMatchesFile(input, comma)
			if err != nil {
				return err
			}
			links := output.Filter(matches, cutOff)

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			if err := output.WriteLinks(w, comma, links); err != nil {
				return err
			}

			logger.Info("Export complete",
				slog.Int("rows", len(matches)),
				slog.Int("accepted", len(links)),
				slog.Float64("cut_off", cutOff))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", config.GetEnv("USLP_OUTPUT_FILE", "uslp-triplets.tsv"), "result table written by match")
	f.StringVar(&outPath, "output", "-", "link table, - for stdout")
	f.StringVar(&delimiter, "delimiter", config.GetEnv("USLP_DELIMITER", "\t"), "field delimiter of both tables")
	f.Float64Var(&cutOff, "cut-off", config.GetEnvFloat("USLP_CUT_OFF", output.DefaultCutOff), "minimum score for a link to be accepted")

	return cmd
}
