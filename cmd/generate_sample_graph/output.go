package main

import (
	"context"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/athapong/sample-graph/pkg/graph/export"
	"github.com/athapong/sample-graph/pkg/graph/processors"
	"github.com/spf13/cobra"
)

// writeDocument encodes doc to --output, or stdout when it is empty
func writeDocument(cmd *cobra.Command, doc *graph.Document, formatName, output string) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if output == "" {
		return export.Write(cmd.OutOrStdout(), doc, format)
	}
	if err := export.WriteFile(output, doc, format); err != nil {
		return err
	}
	logger.WithField("path", output).Infof("Graph written as %s", format)
	return nil
}

func annotate(ctx context.Context, doc *graph.Document) (*graph.Document, error) {
	pipeline := graph.NewPipeline(processors.DefaultProcessors()...)
	pipeline.SetLogger(logger)
	return pipeline.Process(ctx, doc)
}
