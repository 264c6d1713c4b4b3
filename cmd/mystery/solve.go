package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Reveal who did it (spoiler)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := newSession()
		if err != nil {
			return err
		}
		sol, err := session.Solve()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "SOLUTION: %s is the culprit. %s\n", sol.Label, sol.Evidence)
		return nil
	},
}
