package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage a user's calendar feed token",
	}
	cmd.PersistentFlags().StringVar(&email, "user", "", "Email of the user")
	_ = cmd.MarkPersistentFlagRequired("user")

	resolve := func(ctx context.Context) (string, error) {
		user, err := app.Users.GetByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("resolving user %q: %w", email, err)
		}
		return user.ID, nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the feed token, minting one if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			userID, err := resolve(ctx)
			if err != nil {
				return err
			}
			token, err := app.Calendar.EnsureCalendarToken(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the feed token; old feed URLs stop working",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			userID, err := resolve(ctx)
			if err != nil {
				return err
			}
			token, err := app.Calendar.RotateCalendarToken(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Delete the feed token entirely",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			userID, err := resolve(ctx)
			if err != nil {
				return err
			}
			if err := app.Calendar.DeleteCalendarToken(ctx, userID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "calendar token revoked")
			return nil
		},
	}

	cmd.AddCommand(show, rotate, revoke)
	return cmd
}
