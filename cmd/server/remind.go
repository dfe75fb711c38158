package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRemindCmd(rt *runtime) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run one due-note reminder scan",
		Long: `Run one reminder pass for the current hour and print the result.
Use --at to scan as of another instant, e.g. to replay a missed hour.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: expected RFC 3339", at)
				}
				now = parsed
			}

			db, err := openDatabase(cmd.Context(), rt.cfg.Database, rt.logger)
			if err != nil {
				return err
			}
			app, err := newApplication(rt.cfg, rt.logger, db, nil)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer app.close()

			result, err := app.scanner.Scan(cmd.Context(), now)
			if err != nil {
				return fmt.Errorf("reminder scan failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Scan as of this RFC 3339 instant instead of now")
	return cmd
}
