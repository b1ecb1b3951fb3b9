package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/app"
	"github.com/noah-isme/arsip-desa-api/pkg/config"
	"github.com/noah-isme/arsip-desa-api/pkg/logger"
)

// cli carries the state shared by every subcommand.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	// build is swapped in tests.
	build func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app.Container, error)
}

func newRootCmd() *cobra.Command {
	state := &cli{build: app.Build}

	root := &cobra.Command{
		Use:   "arsipctl",
		Short: "Administration tasks for the village archive",
		Long: `arsipctl applies the database schema, seeds the default document
categories and manages login accounts. It reads the same environment and .env
file as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			l, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			state.cfg, state.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
	}

	root.AddCommand(newMigrateCmd(state), newSeedCmd(state), newUserCmd(state))
	return root
}

func (c *cli) container(ctx context.Context) (*app.Container, error) {
	return c.build(ctx, c.cfg, c.logger)
}
