package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/backend"
	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core"
	"github.com/agenthands/synapse/internal/core/model"
	"github.com/agenthands/synapse/internal/export"
	"github.com/agenthands/synapse/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	format     string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "synquery",
	Short: "Query synaptic partners and connector coordinates",
	Long: `synquery builds thresholded partner tables from a synapse materialization
backend and fetches connector coordinates from a skeleton annotation backend.

Backends are selected in the [backend] section of the config file or with
SYNAPSE_BACKEND / CONNECTOR_BACKEND.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.toml", "path to TOML config")
	rootCmd.PersistentFlags().StringVarP(&format, "output", "o", "csv", "output format: csv or json")

	rootCmd.AddCommand(partnersCmd(), connectorsCmd(), communitiesCmd(), loadCmd(), loadConnectorsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withAnalyzer opens the configured backends for the duration of fn.
func withAnalyzer(ctx context.Context, fn func(*core.Analyzer, *backend.Backends) error) error {
	b, err := backend.Open(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer b.Close(ctx)

	return fn(core.NewAnalyzer(b.Synapses, b.Connectors, b.Realigner, cfg, logger), b)
}

func parseIDs(args []string) ([]model.NeuronID, error) {
	ids := make([]model.NeuronID, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid neuron id %q: %w", a, err)
		}
		ids[i] = model.NeuronID(v)
	}
	return ids, nil
}

func outputFormat() (export.Format, error) {
	return export.ParseFormat(format)
}
