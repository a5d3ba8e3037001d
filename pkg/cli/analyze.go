package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/graphshift/graphshift/pkg/services"
)

var analyzeOutput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the source schema and preview the graph model",
	Long: `Analyze introspects the source database, runs semantic enrichment,
and derives the target graph model without moving any data. The result
can be written to a JSON or YAML file for review.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the analysis to a file (.yaml/.yml for YAML, JSON otherwise)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	analyzer := services.NewSchemaAnalyzer(conn, cfg.Source.Schema, logger)
	dbSchema, err := analyzer.Analyze(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s (%s)\n", dbSchema.DatabaseName, dbSchema.DatabaseType)
	fmt.Printf("  Tables:          %d\n", dbSchema.TableCount())
	fmt.Printf("  Entity tables:   %d\n", len(dbSchema.EntityTables()))
	fmt.Printf("  Junction tables: %d\n", len(dbSchema.JunctionTables()))
	fmt.Printf("  Total rows:      %d\n", dbSchema.TotalRowCount())

	analysis := map[string]any{
		"schema": dbSchema.ToMap(),
	}

	var transformer services.Transformer
	if cfg.Migration.SkipEnrichment {
		transformer = services.NewSchemaTransformer(dbSchema, logger)
	} else {
		enricher := services.NewSemanticEnricher(logger)
		conceptual, err := enricher.Enrich(dbSchema)
		if err != nil {
			return err
		}

		fmt.Printf("\nConceptual model:\n")
		fmt.Printf("  Entities:      %d (%d weak)\n", conceptual.EntityCount(), len(conceptual.WeakEntities()))
		fmt.Printf("  Relationships: %d\n", len(conceptual.Relationships))
		fmt.Printf("  Hierarchies:   %d\n", len(conceptual.InheritanceHierarchies))

		analysis["conceptual_model"] = conceptual.ToMap()
		transformer = services.NewConceptualTransformer(dbSchema, conceptual, logger)
	}

	graph, err := transformer.Transform()
	if err != nil {
		return err
	}

	fmt.Printf("\nGraph model:\n")
	fmt.Printf("  Node labels:        %d\n", graph.NodeLabelCount())
	fmt.Printf("  Relationship types: %d\n", graph.RelationshipTypeCount())
	analysis["graph_model"] = graph.ToMap()

	if analyzeOutput != "" {
		data, err := encodeAnalysis(analyzeOutput, analysis)
		if err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
		if err := os.WriteFile(analyzeOutput, data, 0o644); err != nil {
			return fmt.Errorf("write analysis to %s: %w", analyzeOutput, err)
		}
		fmt.Printf("\nAnalysis written to %s\n", analyzeOutput)
	}
	return nil
}

// encodeAnalysis picks the output encoding from the file extension:
// YAML for .yaml/.yml, JSON otherwise.
func encodeAnalysis(path string, analysis map[string]any) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(analysis)
	default:
		return json.MarshalIndent(analysis, "", "  ")
	}
}
