package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-triage/internal/config"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

type rootOptions struct {
	configPath string
	remote     string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "triage-engine",
		Short:         "Deterministic alert fidelity ranking and incident playbooks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(".env"); err == nil {
				if err := godotenv.Load(); err != nil {
					return fmt.Errorf("load .env: %w", err)
				}
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.remote != "" {
				cfg.Client.Address = opts.remote
			}
			opts.cfg = cfg
			// results go to stdout; keep logs off it
			opts.logger = utils.NewLoggerTo(os.Stderr, cfg.Logging.Level, cfg.Logging.JSON)
			slog.SetDefault(opts.logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (default $MIRADOR_TRIAGE_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.remote, "remote", "", "address of a running triage engine; evaluates locally when empty")

	cmd.AddCommand(newServeCmd(opts), newRankCmd(opts), newPlaybookCmd(opts))
	return cmd
}
