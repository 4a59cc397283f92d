// Package cli exposes the pedidos binary as a cobra command tree: the API
// server plus the operational commands that share its configuration.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/config"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/sysutil"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// RootOptions holds global flags and the state resolved before any
// subcommand runs.
type RootOptions struct {
	LogLevel string
	Pretty   bool

	Config config.Config
	Logger zerolog.Logger

	// LoadConfig allows overriding configuration loading (for testing).
	LoadConfig func() (config.Config, error)
}

// NewRootCommand creates the root command for the pedidos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.Load}

	cmd := &cobra.Command{
		Use:     "pedidos",
		Short:   "Order intake and dashboard backend",
		Long:    "Receives orders over Telegram, classifies them with Gemini and serves the staff dashboard API.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "human-readable console logs")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))

	return cmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.LogPretty = o.Pretty
	}
	o.Config = cfg
	o.Logger = sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, cmd.ErrOrStderr())
	return nil
}

// openDB connects using the configured driver.
func openDB(cfg config.Config) (*gorm.DB, func(), error) {
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN(), cfg.OTEL.Enabled)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", cfg.DB.Driver, err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
