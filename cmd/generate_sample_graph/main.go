// Command generate_sample_graph produces synthetic database dependency graphs
// and manages the ones saved locally or pushed to Neo4j.
package main

import (
	"os"

	"github.com/athapong/sample-graph/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	envFile  string
	logger   = logrus.New()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "generate_sample_graph",
	Short: "Generate synthetic database dependency graphs",
	Long: `generate_sample_graph builds random directed graphs whose nodes look like
database objects (tables, views, procedures, functions) and whose edges are
dependencies between them. Output is JSON in the native, Cytoscape or D3
layout. The same seed and parameters always produce the same graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to environment file with storage settings")
}

func storageSettings() (config.StorageSettings, error) {
	return config.LoadStorageSettings(envFile)
}
