// Package cli wires the command line interface: analyze, migrate,
// validate, and test-connection.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/config"
	"github.com/graphshift/graphshift/pkg/logging"

	// Register source database drivers.
	_ "github.com/graphshift/graphshift/pkg/adapters/datasource/mssql"
	_ "github.com/graphshift/graphshift/pkg/adapters/datasource/mysql"
	_ "github.com/graphshift/graphshift/pkg/adapters/datasource/postgres"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "graphshift",
	Short: "Relational to property graph migration tool",
	Long: `graphshift migrates relational databases (MySQL, PostgreSQL, SQL Server)
into a Neo4j property graph. It analyzes the source schema, enriches it
with semantic classification (inheritance, weak entities, cardinality),
and derives node labels and typed relationships before moving the data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(testConnectionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func openSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (datasource.Connector, error) {
	conn, err := datasource.Open(ctx, cfg.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	return conn, nil
}
