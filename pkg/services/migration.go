package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/config"
	"github.com/graphshift/graphshift/pkg/loaders"
	"github.com/graphshift/graphshift/pkg/models"
	"github.com/graphshift/graphshift/pkg/naming"
)

// MigrationOptions tunes a single migration run.
type MigrationOptions struct {
	// DryRun analyzes and transforms but loads nothing.
	DryRun bool
	// Tables restricts the run to the named source tables. Empty means all.
	Tables []string
}

// MigrationReport summarizes a completed run.
type MigrationReport struct {
	RunID    uuid.UUID
	DryRun   bool
	Duration time.Duration

	TableCount            int
	NodeLabelCount        int
	RelationshipTypeCount int

	NodesLoaded         int64
	RelationshipsLoaded int64

	// Per-label and per-type load counts.
	NodeCounts         map[string]int64
	RelationshipCounts map[string]int64
}

// MigrationService orchestrates the full pipeline: schema analysis,
// semantic enrichment, graph transformation, and batched data loading.
type MigrationService interface {
	Run(ctx context.Context, opts MigrationOptions) (*MigrationReport, error)
}

type migrationService struct {
	conn     datasource.Connector
	loader   loaders.GraphLoader
	enricher SemanticEnricher
	cfg      config.MigrationConfig
	schema   string
	logger   *zap.Logger
}

var _ MigrationService = (*migrationService)(nil)

// NewMigrationService wires a migration pipeline over an open source
// connector and graph loader.
func NewMigrationService(conn datasource.Connector, loader loaders.GraphLoader, enricher SemanticEnricher, cfg config.MigrationConfig, schema string, logger *zap.Logger) MigrationService {
	return &migrationService{
		conn:     conn,
		loader:   loader,
		enricher: enricher,
		cfg:      cfg,
		schema:   schema,
		logger:   logger.Named("migration"),
	}
}

func (s *migrationService) Run(ctx context.Context, opts MigrationOptions) (*MigrationReport, error) {
	start := time.Now()
	report := &MigrationReport{
		RunID:              uuid.New(),
		DryRun:             opts.DryRun,
		NodeCounts:         make(map[string]int64),
		RelationshipCounts: make(map[string]int64),
	}

	s.logger.Info("starting migration run",
		zap.String("run_id", report.RunID.String()),
		zap.Bool("dry_run", opts.DryRun))

	analyzer := NewSchemaAnalyzer(s.conn, s.schema, s.logger)
	dbSchema, err := analyzer.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze source schema: %w", err)
	}
	report.TableCount = dbSchema.TableCount()

	transformer, err := s.buildTransformer(dbSchema)
	if err != nil {
		return nil, err
	}
	graph, err := transformer.Transform()
	if err != nil {
		return nil, fmt.Errorf("transform to graph model: %w", err)
	}
	report.NodeLabelCount = graph.NodeLabelCount()
	report.RelationshipTypeCount = graph.RelationshipTypeCount()

	if opts.DryRun {
		report.Duration = time.Since(start)
		s.logger.Info("dry run complete",
			zap.Int("node_labels", report.NodeLabelCount),
			zap.Int("relationship_types", report.RelationshipTypeCount))
		return report, nil
	}

	if s.cfg.ClearTarget {
		if err := s.loader.ClearDatabase(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.loader.CreateSchema(ctx, graph); err != nil {
		return nil, err
	}

	filter := toSet(opts.Tables)
	included := func(table string) bool {
		return len(filter) == 0 || filter[table]
	}

	if err := s.migrateNodes(ctx, dbSchema, graph, transformer, included, report); err != nil {
		return nil, err
	}
	if err := s.migrateRelationships(ctx, dbSchema, graph, included, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	s.logger.Info("migration run complete",
		zap.String("run_id", report.RunID.String()),
		zap.Int64("nodes", report.NodesLoaded),
		zap.Int64("relationships", report.RelationshipsLoaded),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (s *migrationService) buildTransformer(dbSchema *models.DatabaseSchema) (Transformer, error) {
	if s.cfg.SkipEnrichment {
		s.logger.Info("semantic enrichment disabled, mapping schema directly")
		return NewSchemaTransformer(dbSchema, s.logger), nil
	}

	conceptual, err := s.enricher.Enrich(dbSchema)
	if err != nil {
		return nil, fmt.Errorf("semantic enrichment: %w", err)
	}
	return NewConceptualTransformer(dbSchema, conceptual, s.logger), nil
}

func (s *migrationService) migrateNodes(ctx context.Context, dbSchema *models.DatabaseSchema, graph *models.GraphModel, transformer Transformer, included func(string) bool, report *MigrationReport) error {
	extractor := NewDataExtractor(s.conn, s.cfg.BatchSize, s.logger)

	for _, table := range dbSchema.EntityTables() {
		if !included(table.Name) || table.RowCount == 0 {
			continue
		}
		label := graph.GetNodeLabel(naming.Label(table.Name))
		if label == nil {
			continue
		}

		err := extractor.ExtractTable(ctx, table, func(batch []map[string]any) error {
			nodes := make([]map[string]any, 0, len(batch))
			for _, row := range batch {
				props, err := transformer.RowToNode(table.Name, row)
				if err != nil {
					return err
				}
				nodes = append(nodes, props)
			}

			loaded, err := s.loader.LoadNodes(ctx, label.Name, nodes)
			if err != nil {
				return err
			}
			report.NodesLoaded += loaded
			report.NodeCounts[label.Name] += loaded
			return nil
		})
		if err != nil {
			return fmt.Errorf("migrate nodes of %s: %w", table.Name, err)
		}
	}
	return nil
}

// migrateRelationships loads edges by walking the graph model's
// relationship types and extracting the rows that back each one: the
// owning table for foreign keys, the junction table for N:M types.
// Endpoint nodes are matched by each label's key property.
func (s *migrationService) migrateRelationships(ctx context.Context, dbSchema *models.DatabaseSchema, graph *models.GraphModel, included func(string) bool, report *MigrationReport) error {
	extractor := NewDataExtractor(s.conn, s.cfg.BatchSize, s.logger)

	for _, rt := range graph.RelationshipTypes() {
		switch {
		case rt.SourceJunctionTable != "":
			if !included(rt.SourceJunctionTable) {
				continue
			}
			if err := s.migrateJunctionEdges(ctx, dbSchema, graph, extractor, rt, report); err != nil {
				return err
			}
		case rt.SourceForeignKey != "":
			if err := s.migrateForeignKeyEdges(ctx, dbSchema, graph, extractor, rt, included, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *migrationService) migrateForeignKeyEdges(ctx context.Context, dbSchema *models.DatabaseSchema, graph *models.GraphModel, extractor DataExtractor, rt *models.RelationshipType, included func(string) bool, report *MigrationReport) error {
	table, fk := findForeignKey(dbSchema, rt)
	if table == nil || fk == nil {
		s.logger.Warn("no backing foreign key found for relationship type",
			zap.String("type", rt.Name),
			zap.String("foreign_key", rt.SourceForeignKey))
		return nil
	}
	if !included(table.Name) || table.RowCount == 0 {
		return nil
	}
	if table.PrimaryKey == nil || len(table.PrimaryKey.Columns) == 0 {
		s.logger.Warn("skipping relationship for table without primary key",
			zap.String("table", table.Name),
			zap.String("type", rt.Name))
		return nil
	}
	pkColumn := table.PrimaryKey.Columns[0]

	fromIDProp := keyProperty(graph, rt.FromLabel)
	toIDProp := keyProperty(graph, rt.ToLabel)

	err := extractor.ExtractTable(ctx, table, func(batch []map[string]any) error {
		records := make([]loaders.RelationshipRecord, 0, len(batch))
		for _, row := range batch {
			if row[fk.Column] == nil {
				continue
			}
			records = append(records, loaders.RelationshipRecord{
				FromID: row[pkColumn],
				ToID:   row[fk.Column],
			})
		}

		loaded, err := s.loader.LoadRelationships(ctx, rt, records, fromIDProp, toIDProp)
		if err != nil {
			return err
		}
		report.RelationshipsLoaded += loaded
		report.RelationshipCounts[rt.Name] += loaded
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate %s relationships: %w", rt.Name, err)
	}
	return nil
}

func (s *migrationService) migrateJunctionEdges(ctx context.Context, dbSchema *models.DatabaseSchema, graph *models.GraphModel, extractor DataExtractor, rt *models.RelationshipType, report *MigrationReport) error {
	junction := dbSchema.GetTable(rt.SourceJunctionTable)
	if junction == nil || len(junction.ForeignKeys) != 2 || junction.RowCount == 0 {
		return nil
	}
	fk1, fk2 := junction.ForeignKeys[0], junction.ForeignKeys[1]

	fromIDProp := keyProperty(graph, rt.FromLabel)
	toIDProp := keyProperty(graph, rt.ToLabel)

	err := extractor.ExtractTable(ctx, junction, func(batch []map[string]any) error {
		records := make([]loaders.RelationshipRecord, 0, len(batch))
		for _, row := range batch {
			props := make(map[string]any)
			for _, col := range junction.Columns {
				if col.Name == fk1.Column || col.Name == fk2.Column {
					continue
				}
				props[naming.PropertyName(col.Name)] = convertValue(row[col.Name], col.DataType)
			}
			records = append(records, loaders.RelationshipRecord{
				FromID:     row[fk1.Column],
				ToID:       row[fk2.Column],
				Properties: props,
			})
		}

		loaded, err := s.loader.LoadRelationships(ctx, rt, records, fromIDProp, toIDProp)
		if err != nil {
			return err
		}
		report.RelationshipsLoaded += loaded
		report.RelationshipCounts[rt.Name] += loaded
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate %s relationships: %w", rt.Name, err)
	}
	return nil
}

// findForeignKey locates the table and FK backing a relationship type.
// FK constraint names can repeat across tables, so the owning table's
// label has to match too.
func findForeignKey(dbSchema *models.DatabaseSchema, rt *models.RelationshipType) (*models.Table, *models.ForeignKey) {
	for _, table := range dbSchema.Tables() {
		if naming.Label(table.Name) != rt.FromLabel {
			continue
		}
		for _, fk := range table.ForeignKeys {
			if fk.Name == rt.SourceForeignKey {
				return table, fk
			}
		}
	}
	return nil, nil
}

// keyProperty returns the key property used to match nodes of a label.
func keyProperty(graph *models.GraphModel, label string) string {
	if nl := graph.GetNodeLabel(label); nl != nil && nl.PrimaryKey != "" {
		return nl.PrimaryKey
	}
	return "id"
}
