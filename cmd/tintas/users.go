package main

import (
	"context"
	"fmt"
	"strings"
	"tintas-bot/internal/storage"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage personal data kept about users",
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-ref>",
	Short: "Erase the calculations, consents and chat state of a user",
	Long: `Deletes everything recorded for a user reference: "tg:<chat id>" for
Telegram users, the client IP for API calls.

Example:
  tintas users delete tg:123456789`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersDelete,
}

func init() {
	usersCmd.AddCommand(usersDeleteCmd)
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return fmt.Errorf("user reference must not be empty")
	}

	return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
		deleted, err := s.DeleteUserData(ctx, ref)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d calculations and %d consents for %s\n",
			deleted.Calculations, deleted.Consents, ref)
		return nil
	})
}
