package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphshift/graphshift/pkg/loaders"
	"github.com/graphshift/graphshift/pkg/services"
)

var validateCheckCounts bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a completed migration against the source",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateCheckCounts, "check-counts", false, "print per-table row count comparisons")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()

	conn, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	loader, err := loaders.NewNeo4jLoader(cfg.Target, logger)
	if err != nil {
		return err
	}
	defer loader.Close(ctx) //nolint:errcheck

	if err := loader.VerifyConnectivity(ctx); err != nil {
		return err
	}

	analyzer := services.NewSchemaAnalyzer(conn, cfg.Source.Schema, logger)
	dbSchema, err := analyzer.Analyze(ctx)
	if err != nil {
		return err
	}

	// Rebuild the graph model the same way the migration did, so labels
	// and relationship type names line up.
	var transformer services.Transformer
	if cfg.Migration.SkipEnrichment {
		transformer = services.NewSchemaTransformer(dbSchema, logger)
	} else {
		conceptual, err := services.NewSemanticEnricher(logger).Enrich(dbSchema)
		if err != nil {
			return err
		}
		transformer = services.NewConceptualTransformer(dbSchema, conceptual, logger)
	}
	graph, err := transformer.Transform()
	if err != nil {
		return err
	}

	validator := services.NewDataValidator(loader, logger)

	post, err := validator.ValidatePostMigration(ctx, dbSchema, graph)
	if err != nil {
		return err
	}
	rels, err := validator.ValidateRelationships(ctx, graph)
	if err != nil {
		return err
	}

	fmt.Printf("Target: %d nodes, %d relationships\n", post.TotalNodes, post.TotalRelationships)

	if validateCheckCounts {
		for _, cmp := range post.RowCounts {
			status := "ok"
			if !cmp.Match() {
				status = "MISMATCH"
			}
			fmt.Printf("  %-30s source=%-10d target=%-10d %s\n", cmp.Table, cmp.Source, cmp.Target, status)
		}
	}

	for _, warn := range append(post.Warnings, rels.Warnings...) {
		fmt.Printf("  warning: %s\n", warn)
	}
	for _, e := range append(post.Errors, rels.Errors...) {
		fmt.Printf("  error: %s\n", e)
	}

	if !post.Valid || !rels.Valid {
		return fmt.Errorf("validation failed")
	}
	fmt.Println("Validation passed")
	return nil
}
