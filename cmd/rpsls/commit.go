package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rpsls_wager/internal/game"

	"github.com/spf13/cobra"
)

// CommitCmd generates a secret and prints the commitment to submit.
func CommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a secret and commit to a move",
		RunE:  commit,
	}
	addCommitFlags(cmd)
	return cmd
}

func addCommitFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("move", "m", "", "move name or code (rock, paper, scissors, spock, lizard)")
	cmd.MarkFlagRequired("move")
	cmd.Flags().StringP("out", "o", "", "write the secret backup to this file (mode 0600)")
	cmd.Flags().Bool("force", false, "overwrite an existing backup file")
}

func commit(cmd *cobra.Command, args []string) error {
	moveName, _ := cmd.Flags().GetString("move")
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	move, err := game.ParseMove(moveName)
	if err != nil {
		return err
	}
	secret, err := game.GenerateSecret()
	if err != nil {
		return err
	}
	backup, err := game.NewSecretBackup(move, secret, time.Now())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return err
	}

	if out == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "no --out given: keep this record, the secret cannot be recovered")
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(out, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), backup.CommitmentHex)
	return nil
}
