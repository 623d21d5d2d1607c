// Package cli defines the sustainapi command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sustainapi/internal/config"
)

// Version will be set at build time
var Version = "dev"

// globalOptions are flags shared by every subcommand. Empty values defer to
// the environment configuration.
type globalOptions struct {
	dataFile   string
	listenAddr string
}

// NewRootCmd builds the command tree. Running it without a subcommand serves
// the API.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "sustainapi",
		Short: "REST API over UVA building sustainability metrics",
		Long: `Loads a CSV of building-level energy, water, waste and CO2 figures
and serves filtered and aggregated views of it over HTTP.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataFile, "data", "", "CSV data file (overrides APP_DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.listenAddr, "addr", "", "listen address (overrides APP_LISTEN_ADDR)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newConvertCmd(),
		newQueryCmd(opts),
	)
	return rootCmd
}

// Execute runs the command tree until it finishes or the process is
// interrupted. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}
	if opts.listenAddr != "" {
		cfg.ListenAddr = opts.listenAddr
	}
	return cfg, nil
}
