package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wkg-uslp/internal/config"
	"github.com/wkg-uslp/internal/logging"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create root command
	rootCmd := &cobra.Command{
		Use:           "uslp",
		Short:         "Unsupervised spatial literal propagation",
		Long:          `Resolves string literals in a geographic knowledge graph to the entities they name`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(createMatchCmd())
	rootCmd.AddCommand(createPlanCmd())
	rootCmd.AddCommand(createExportCmd())
	rootCmd.AddCommand(createLoadCmd())
	rootCmd.AddCommand(createPingCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// setupLogger installs the pretty handler as the default logger
func setupLogger(debug bool) *slog.Logger {
	logger := logging.New(os.Stderr, debug)
	slog.SetDefault(logger)
	return logger
}
