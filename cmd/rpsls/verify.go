package main

import (
	"fmt"

	"rpsls_wager/internal/game"

	"github.com/spf13/cobra"
)

// VerifyCmd checks a (move, secret) pair against a commitment.
func VerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a move and secret open a commitment",
		RunE:  verify,
	}
	cmd.Flags().StringP("move", "m", "", "move name or code")
	cmd.Flags().StringP("secret", "s", "", "secret, 64 hex digits")
	cmd.Flags().StringP("commitment", "c", "", "commitment, 64 hex digits")
	cmd.MarkFlagRequired("move")
	cmd.MarkFlagRequired("secret")
	cmd.MarkFlagRequired("commitment")
	return cmd
}

func verify(cmd *cobra.Command, args []string) error {
	moveName, _ := cmd.Flags().GetString("move")
	secretHex, _ := cmd.Flags().GetString("secret")
	commitHex, _ := cmd.Flags().GetString("commitment")

	move, err := game.ParseMove(moveName)
	if err != nil {
		return err
	}
	secret, err := game.ParseSecret(secretHex)
	if err != nil {
		return err
	}
	c, err := game.ParseCommitment(commitHex)
	if err != nil {
		return err
	}

	if !game.Verify(move, secret, c) {
		fmt.Fprintln(cmd.OutOrStdout(), "mismatch")
		return errMismatch
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
