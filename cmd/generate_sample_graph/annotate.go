package main

import (
	"github.com/athapong/sample-graph/pkg/graph/storage"
	"github.com/spf13/cobra"
)

var annotateFlags struct {
	format string
	output string
}

func init() {
	annotateCmd.Flags().StringVar(&annotateFlags.format, "format", "json", "Output format (json, cytoscape, d3)")
	annotateCmd.Flags().StringVarP(&annotateFlags.output, "output", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(annotateCmd)
}

var annotateCmd = &cobra.Command{
	Use:   "annotate <graph.json>",
	Short: "Recompute degrees, levels and clusters of a graph file",
	Long: `Read a graph document (native or Cytoscape layout), replace the decorative
degree, level and cluster fields with values derived from its edges, and
write the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := storage.NewJSONGraphStore(args[0]).LoadGraph(cmd.Context())
		if err != nil {
			return err
		}
		if doc, err = annotate(cmd.Context(), doc); err != nil {
			return err
		}
		return writeDocument(cmd, doc, annotateFlags.format, annotateFlags.output)
	},
}
