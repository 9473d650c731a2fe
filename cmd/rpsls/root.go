package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errMismatch = errors.New("commitment does not match")

// RootCmd builds the command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rpsls",
		Short:         "Commit-reveal helper for wagered rock-paper-scissors-spock-lizard",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		CommitCmd(),
		VerifyCmd(),
		BackupCmd(),
		RulesCmd(),
		OutcomeCmd(),
	)
	return cmd
}
