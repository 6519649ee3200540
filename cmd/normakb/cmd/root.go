// Package cmd provides the CLI commands for normakb.
package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/normakb/normakb/internal/config"
	"github.com/normakb/normakb/internal/logging"
	"github.com/normakb/normakb/pkg/version"
)

// app carries the shared command state built in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

// NewRootCmd creates the root command for the normakb CLI.
func NewRootCmd() *cobra.Command {
	var (
		dataDir    string
		configPath string
		logLevel   string
		a          app
	)

	cmd := &cobra.Command{
		Use:   "normakb",
		Short: "Queryable knowledge base over normative rules documents",
		Long: `normakb ingests structured rules text (with page and article markers),
partitions it into token-bounded chunks that never split an article,
derives keyword and article indices, and serves token-budgeted retrieval.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = filepath.Join(dataDir, "config.yaml")
			}
			cfg, err := config.Load(configPath, dataDir)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			logger, cleanup, err := logging.Setup(logging.Config{
				Level:         cfg.Logging.Level,
				FilePath:      cfg.Paths.LogFile,
				WriteToStderr: false,
			})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			a.cfg = cfg
			a.logger = logger
			a.cleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data", "data", "data directory root")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: <data>/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newRebuildCmd(&a),
		newUpdateCmd(&a),
		newValidateCmd(&a),
		newQueryCmd(&a),
		newVersionCmd(),
	)

	return cmd
}
