package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "token --user <uuid>",
		Short: "Mint an access token for local use",
		Long: `Print a signed access token for the given user id. Accounts are managed
outside this service, so this is how a local client gets a bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil || id == uuid.Nil {
				return fmt.Errorf("invalid --user %q: expected a UUID", userID)
			}

			jwtService, err := auth.NewJWTService(rt.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, err := jwtService.GenerateToken(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to put in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
