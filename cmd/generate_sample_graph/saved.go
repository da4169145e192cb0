package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/athapong/sample-graph/pkg/graph/storage"
	"github.com/spf13/cobra"
)

var savedFlags struct {
	db     string
	format string
	output string
	json   bool
}

func init() {
	savedCmd.PersistentFlags().StringVar(&savedFlags.db, "db", "", "Local database path (defaults to $SAMPLE_GRAPH_DB)")
	savedListCmd.Flags().BoolVar(&savedFlags.json, "json", false, "Print summaries as JSON")
	savedShowCmd.Flags().StringVar(&savedFlags.format, "format", "json", "Output format (json, cytoscape, d3)")
	savedShowCmd.Flags().StringVarP(&savedFlags.output, "output", "o", "", "Output file (stdout when empty)")

	savedCmd.AddCommand(savedListCmd, savedShowCmd, savedDeleteCmd)
	rootCmd.AddCommand(savedCmd)
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage graphs saved in the local database",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocalStore(cmd, savedFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		if savedFlags.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSEED\tNODES\tEDGES\tCREATED")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", s.Name, s.Seed, s.NodeCount, s.EdgeCount, s.CreatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

var savedShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocalStore(cmd, savedFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeDocument(cmd, saved.Document, savedFlags.format, savedFlags.output)
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocalStore(cmd, savedFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.WithField("name", args[0]).Info("Deleted graph")
		return nil
	},
}

// openLocalStore opens the SQLite store at path, or at the configured
// location when path is empty
func openLocalStore(cmd *cobra.Command, path string) (*storage.SQLiteStore, error) {
	if path == "" {
		settings, err := storageSettings()
		if err != nil {
			return nil, err
		}
		path = settings.DatabasePath
	}
	logger.WithField("path", path).Debug("Opening graph database")
	return storage.OpenSQLiteStore(cmd.Context(), path)
}
