package main

import (
	"fmt"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/athapong/sample-graph/pkg/graph/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var pushFlags struct {
	saved string
	graph string
	db    string
}

func init() {
	pushCmd.Flags().StringVar(&pushFlags.saved, "saved", "", "Push a graph from the local database instead of a file")
	pushCmd.Flags().StringVar(&pushFlags.graph, "graph", "", "Graph name in Neo4j (defaults to the file or saved name)")
	pushCmd.Flags().StringVar(&pushFlags.db, "db", "", "Local database path (defaults to $SAMPLE_GRAPH_DB)")
	rootCmd.AddCommand(pushCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push [graph.json]",
	Short: "Load a graph into Neo4j",
	Long: `Replace a named graph in Neo4j with the given document. Nodes become
:DbObject nodes and edges :DEPENDS_ON relationships. Connection settings come
from NEO4J_URI, NEO4J_USERNAME and NEO4J_PASSWORD.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (pushFlags.saved != "") {
		return fmt.Errorf("give either a graph file or --saved, not both")
	}

	var (
		doc  *graph.Document
		name string
		err  error
	)
	if pushFlags.saved != "" {
		store, err := openLocalStore(cmd, pushFlags.db)
		if err != nil {
			return err
		}
		saved, err := store.Load(cmd.Context(), pushFlags.saved)
		store.Close()
		if err != nil {
			return err
		}
		doc, name = saved.Document, saved.Name
	} else {
		if doc, err = storage.NewJSONGraphStore(args[0]).LoadGraph(cmd.Context()); err != nil {
			return err
		}
		name = args[0]
	}
	if pushFlags.graph != "" {
		name = pushFlags.graph
	}

	settings, err := storageSettings()
	if err != nil {
		return err
	}
	neo, err := storage.NewNeo4jStorage(settings.Neo4jURI, settings.Neo4jUsername, settings.Neo4jPassword, name)
	if err != nil {
		return err
	}
	defer neo.Close()

	if err := neo.Connect(cmd.Context()); err != nil {
		return err
	}
	if err := neo.StoreGraph(cmd.Context(), doc); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"graph": name,
		"uri":   settings.Neo4jURI,
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	}).Info("Pushed graph to Neo4j")
	return nil
}
