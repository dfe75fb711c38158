package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/forgetmenot/internal/metrics"
	"github.com/phrazzld/forgetmenot/internal/reminder"
	"github.com/spf13/cobra"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes API",
		Long: `Serve the notes API on server.port. When reminder.enabled is set the
hourly due-note reminder scan runs in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt)
		},
	}
}

func runServe(ctx context.Context, rt *runtime) error {
	db, err := openDatabase(ctx, rt.cfg.Database, rt.logger)
	if err != nil {
		return err
	}

	app, err := newApplication(rt.cfg, rt.logger, db, metrics.NewDefault())
	if err != nil {
		_ = db.Close()
		return err
	}
	defer app.close()

	if rt.cfg.Reminder.Enabled {
		scheduler := reminder.NewScheduler(app.scanner, reminder.SchedulerConfig{
			Interval: rt.cfg.Reminder.Interval,
			Location: app.scanner.Location(),
		}, rt.logger)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", rt.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", rt.cfg.Server.Port, err)
	}

	return serveHTTP(ctx, ln, newRouter(app.routerDeps()), rt.cfg.Server.ShutdownTimeout,
		rt.logger.With(slog.String("component", "http_server")))
}
