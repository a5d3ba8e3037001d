package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphshift/graphshift/pkg/loaders"
)

var testConnectionTarget string

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify connectivity to the source and target databases",
	RunE:  runTestConnection,
}

func init() {
	testConnectionCmd.Flags().StringVar(&testConnectionTarget, "target", "both", "which side to test: source, neo4j, or both")
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	failed := false

	if testConnectionTarget == "source" || testConnectionTarget == "both" {
		conn, err := openSource(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if err := conn.TestConnection(ctx); err != nil {
			fmt.Printf("source (%s): FAILED: %v\n", cfg.Source.Type, err)
			failed = true
		} else {
			fmt.Printf("source (%s): ok\n", cfg.Source.Type)
		}
		conn.Close() //nolint:errcheck
	}

	if testConnectionTarget == "neo4j" || testConnectionTarget == "both" {
		loader, err := loaders.NewNeo4jLoader(cfg.Target, logger)
		if err != nil {
			return err
		}
		if err := loader.VerifyConnectivity(ctx); err != nil {
			fmt.Printf("neo4j: FAILED: %v\n", err)
			failed = true
		} else {
			fmt.Println("neo4j: ok")
		}
		loader.Close(ctx) //nolint:errcheck
	}

	if failed {
		return fmt.Errorf("connection test failed")
	}
	return nil
}
