// Command rpsls is the player's local tool: it makes commitments, keeps the
// secret safe in a backup file and checks reveals offline.
package main

import (
	"os"
)

func main() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
