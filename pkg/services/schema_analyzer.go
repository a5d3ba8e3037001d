// Package services contains the schema analysis, semantic enrichment,
// graph transformation, and migration orchestration services.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/models"
)

// SchemaAnalyzer introspects a source database into a schema snapshot.
type SchemaAnalyzer interface {
	// Analyze reads every base table's structure, constraints, indexes,
	// and row count. Tables that fail introspection are skipped with a
	// warning rather than failing the whole analysis.
	Analyze(ctx context.Context) (*models.DatabaseSchema, error)
}

type schemaAnalyzer struct {
	conn   datasource.Connector
	schema string
	logger *zap.Logger
}

var _ SchemaAnalyzer = (*schemaAnalyzer)(nil)

// NewSchemaAnalyzer creates a SchemaAnalyzer over an open connector.
// schema may be empty, in which case the connector's default is used.
func NewSchemaAnalyzer(conn datasource.Connector, schema string, logger *zap.Logger) SchemaAnalyzer {
	return &schemaAnalyzer{
		conn:   conn,
		schema: schema,
		logger: logger.Named("schema-analyzer"),
	}
}

func (a *schemaAnalyzer) Analyze(ctx context.Context) (*models.DatabaseSchema, error) {
	dbSchema := models.NewDatabaseSchema(a.conn.DatabaseName(), a.conn.Type())

	tables, err := a.conn.GetTables(ctx, a.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	a.logger.Info("analyzing schema",
		zap.String("database", a.conn.DatabaseName()),
		zap.Int("tables", len(tables)))

	for _, name := range tables {
		table, err := a.analyzeTable(ctx, name)
		if err != nil {
			a.logger.Warn("skipping table",
				zap.String("table", name),
				zap.Error(err))
			continue
		}
		dbSchema.AddTable(table)
	}

	a.logger.Info("schema analysis complete",
		zap.Int("tables", dbSchema.TableCount()),
		zap.Int("junction_tables", len(dbSchema.JunctionTables())),
		zap.Int64("total_rows", dbSchema.TotalRowCount()))

	return dbSchema, nil
}

func (a *schemaAnalyzer) analyzeTable(ctx context.Context, name string) (*models.Table, error) {
	table := &models.Table{
		Name:   name,
		Schema: a.schema,
	}

	columns, err := a.conn.GetColumns(ctx, name, a.schema)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	for _, col := range columns {
		table.Columns = append(table.Columns, &models.Column{
			Name:            col.Name,
			DataType:        col.DataType,
			IsNullable:      col.IsNullable,
			MaxLength:       col.MaxLength,
			Precision:       col.Precision,
			Scale:           col.Scale,
			DefaultValue:    col.DefaultValue,
			IsAutoIncrement: col.IsAutoIncrement,
			OrdinalPosition: col.OrdinalPosition,
		})
	}

	pk, err := a.conn.GetPrimaryKey(ctx, name, a.schema)
	if err != nil {
		return nil, fmt.Errorf("primary key: %w", err)
	}
	if pk != nil {
		table.PrimaryKey = &models.PrimaryKey{Name: pk.Name, Columns: pk.Columns}
	}

	fks, err := a.conn.GetForeignKeys(ctx, name, a.schema)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	for _, fk := range fks {
		table.ForeignKeys = append(table.ForeignKeys, &models.ForeignKey{
			Name:             fk.Name,
			Column:           fk.Column,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
			OnDelete:         fk.OnDelete,
			OnUpdate:         fk.OnUpdate,
		})
	}

	indexes, err := a.conn.GetIndexes(ctx, name, a.schema)
	if err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	for _, idx := range indexes {
		table.Indexes = append(table.Indexes, &models.Index{
			Name:     idx.Name,
			Columns:  idx.Columns,
			IsUnique: idx.IsUnique,
		})
	}

	count, err := a.conn.GetRowCount(ctx, name, a.schema)
	if err != nil {
		return nil, fmt.Errorf("row count: %w", err)
	}
	table.RowCount = count

	return table, nil
}
