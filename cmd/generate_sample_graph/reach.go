package main

import (
	"fmt"
	"strings"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/athapong/sample-graph/pkg/graph/algorithms"
	"github.com/athapong/sample-graph/pkg/graph/storage"
	"github.com/spf13/cobra"
)

var reachFlags struct {
	depth     int
	direction string
	dfs       bool
	format    string
	output    string
}

func init() {
	f := reachCmd.Flags()
	f.IntVar(&reachFlags.depth, "depth", 1, "Maximum number of hops")
	f.StringVar(&reachFlags.direction, "direction", string(algorithms.Outgoing), "Edges to follow (out, in, both)")
	f.BoolVar(&reachFlags.dfs, "dfs", false, "Visit depth first instead of breadth first")
	f.StringVar(&reachFlags.format, "format", "json", "Output format (json, cytoscape, d3)")
	f.StringVarP(&reachFlags.output, "output", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(reachCmd)
}

var reachCmd = &cobra.Command{
	Use:   "reach <graph.json> <node-id>",
	Short: "Extract the neighbourhood of a node",
	Long: `Write the subgraph of nodes reachable from a node within --depth hops,
keeping the edges between them. With --direction in the walk follows
dependents instead of dependencies.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := algorithms.Direction(strings.ToLower(reachFlags.direction))
		switch direction {
		case algorithms.Outgoing, algorithms.Incoming, algorithms.Undirected:
		default:
			return fmt.Errorf("unknown direction %q", reachFlags.direction)
		}

		doc, err := storage.NewJSONGraphStore(args[0]).LoadGraph(cmd.Context())
		if err != nil {
			return err
		}

		traversal := algorithms.BFS
		if reachFlags.dfs {
			traversal = algorithms.DFS
		}
		nodes, err := algorithms.NewGraphTraversal(graph.NewIndex(doc), direction).
			Traverse(cmd.Context(), args[1], reachFlags.depth, traversal)
		if err != nil {
			return err
		}

		return writeDocument(cmd, algorithms.Induced(doc, nodes), reachFlags.format, reachFlags.output)
	},
}
