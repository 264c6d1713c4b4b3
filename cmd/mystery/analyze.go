package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/mystery-engine/pkg/graph"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the relationship analysis and traversal orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := newSession()
		if err != nil {
			return err
		}
		g := session.Graph()
		start := session.Scenario().Investigator
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, session.SummarizeRelationships())
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Depth-first from %s:   %s\n", start, joinIDs(g.TraverseDFS(start)))
		fmt.Fprintf(out, "Breadth-first from %s: %s\n", start, joinIDs(g.TraverseBFS(start)))

		dist := g.Distances(start)
		fmt.Fprintln(out, "\nHops from", start+":")
		for _, n := range g.Nodes() {
			if d, ok := dist[n.ID]; ok {
				fmt.Fprintf(out, "  %-8s %d  (suspicion %d/%d)\n", n.ID, d, n.Data.SuspicionLevel, graph.MaxSuspicion)
			}
		}
		return nil
	},
}

func joinIDs(nodes []*graph.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, " → ")
}
