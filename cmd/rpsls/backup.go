package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rpsls_wager/internal/game"

	"github.com/spf13/cobra"
)

// BackupCmd groups commands that read a secret backup file.
func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect secret backup files",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		backupShowCmd(),
		backupRevealCmd(),
	)
	return cmd
}

func backupShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Validate a backup and print its contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readBackup(cmd)
			if err != nil {
				return err
			}
			move, secret, c, err := b.Restore()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "move:       %s (%d)\n", move, move.Code())
			fmt.Fprintf(w, "secret:     %s\n", secret.Hex())
			fmt.Fprintf(w, "commitment: %s\n", c.Hex())
			fmt.Fprintf(w, "created:    %s\n", b.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
	addInFlag(cmd)
	return cmd
}

// backupRevealCmd prints the request body for POST /api/v1/games/:id/reveal.
func backupRevealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Print the reveal request body for a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readBackup(cmd)
			if err != nil {
				return err
			}
			move, secret, _, err := b.Restore()
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
				"move":   move.String(),
				"secret": secret.Hex(),
			})
		},
	}
	addInFlag(cmd)
	return cmd
}

func addInFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("in", "i", "", "backup file written by `rpsls commit`")
	cmd.MarkFlagRequired("in")
}

func readBackup(cmd *cobra.Command) (game.SecretBackup, error) {
	path, _ := cmd.Flags().GetString("in")
	data, err := os.ReadFile(path)
	if err != nil {
		return game.SecretBackup{}, err
	}
	var b game.SecretBackup
	if err := json.Unmarshal(data, &b); err != nil {
		return game.SecretBackup{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}
