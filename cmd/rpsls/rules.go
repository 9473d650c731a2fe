package main

import (
	"fmt"
	"strings"

	"rpsls_wager/internal/game"

	"github.com/spf13/cobra"
)

// RulesCmd prints the dominance table.
func RulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print which move beats which",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, m := range game.Moves {
				beaten := make([]string, 0, 2)
				for _, o := range m.Defeats() {
					beaten = append(beaten, o.String())
				}
				fmt.Fprintf(w, "%d %-8s beats %s\n", m.Code(), m, strings.Join(beaten, ", "))
			}
		},
	}
}

// OutcomeCmd decides a single round between two moves.
func OutcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outcome FIRST SECOND",
		Short: "Decide a round between the first and second mover's moves",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := game.ParseMove(args[0])
			if err != nil {
				return fmt.Errorf("first move: %w", err)
			}
			b, err := game.ParseMove(args[1])
			if err != nil {
				return fmt.Errorf("second move: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), game.Beats(a, b))
			return nil
		},
	}
}
