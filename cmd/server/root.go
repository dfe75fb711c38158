package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/forgetmenot/internal/config"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/spf13/cobra"
)

// runtime is shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type runtime struct {
	configDir string
	cfg       *config.Config
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "forgetmenot",
		Short: "Spaced-repetition scheduler for personal notes",
		Long: `forgetmenot schedules when each note should be re-read using fixed
intervals of 1, 3, 7, 14, 30, 60, 90, 180 and 365 days.

Configuration comes from config.yaml in --config and FORGETMENOT_*
environment variables, which take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&rt.configDir, "config", ".", "Directory containing config.yaml")

	cmd.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newRemindCmd(rt),
		newTokenCmd(rt),
		newSeedCmd(rt),
	)
	return cmd
}

func (rt *runtime) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(rt.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	rt.cfg = cfg
	rt.logger = l.With(slog.String("command", cmd.Name()))
	rt.logger.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Scheduling.Timezone),
		slog.Bool("reminders_enabled", cfg.Reminder.Enabled))
	return nil
}
