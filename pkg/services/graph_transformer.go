package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/apperrors"
	"github.com/graphshift/graphshift/pkg/models"
	"github.com/graphshift/graphshift/pkg/naming"
)

// Transformer maps a source model onto the target property graph and
// converts extracted rows into node property maps.
type Transformer interface {
	// Transform builds the graph model. Must be called before RowToNode.
	Transform() (*models.GraphModel, error)

	// RowToNode converts one table row into node properties, dropping
	// foreign key columns and converting values for the graph store.
	RowToNode(tableName string, row map[string]any) (map[string]any, error)
}

// conceptualTransformer maps an enriched conceptual model onto the graph,
// preserving semantic classification. The schema is still needed for
// column type resolution.
type conceptualTransformer struct {
	schema     *models.DatabaseSchema
	conceptual *models.ConceptualModel
	graph      *models.GraphModel
	logger     *zap.Logger
}

var _ Transformer = (*conceptualTransformer)(nil)

// NewConceptualTransformer creates the preferred, conceptual-model-driven
// transformer variant.
func NewConceptualTransformer(schema *models.DatabaseSchema, conceptual *models.ConceptualModel, logger *zap.Logger) Transformer {
	return &conceptualTransformer{
		schema:     schema,
		conceptual: conceptual,
		logger:     logger.Named("graph-transformer"),
	}
}

func (t *conceptualTransformer) Transform() (*models.GraphModel, error) {
	if t.conceptual == nil || t.schema == nil {
		return nil, apperrors.ErrNoModel
	}

	t.logger.Info("transforming conceptual model to graph",
		zap.Int("entities", t.conceptual.EntityCount()),
		zap.Int("relationships", len(t.conceptual.Relationships)))

	graph := models.NewGraphModel(t.conceptual.SourceSchemaName+"_graph", t.conceptual.SourceSchemaName)

	for _, entity := range t.conceptual.Entities() {
		graph.AddNodeLabel(entityToNodeLabel(t.schema, entity))
	}
	for _, rel := range t.conceptual.Relationships {
		graph.AddRelationshipType(relationshipToEdge(t.schema, rel))
	}

	t.logger.Info("graph model built",
		zap.Int("node_labels", graph.NodeLabelCount()),
		zap.Int("relationship_types", graph.RelationshipTypeCount()))

	t.graph = graph
	return graph, nil
}

func (t *conceptualTransformer) RowToNode(tableName string, row map[string]any) (map[string]any, error) {
	return rowToNode(t.schema, t.graph, tableName, row)
}

func entityToNodeLabel(schema *models.DatabaseSchema, entity *models.ConceptualEntity) *models.NodeLabel {
	label := &models.NodeLabel{
		Name:        naming.Label(entity.Name),
		SourceTable: entity.SourceTable,
	}

	table := schema.GetTable(entity.SourceTable)
	if table == nil {
		return label
	}

	for _, attr := range entity.Attributes {
		column := table.GetColumn(attr)
		if column == nil {
			continue
		}
		label.AddProperty(&models.Property{
			Name:           naming.PropertyName(attr),
			Type:           models.PropertyTypeFromSQL(column.DataType),
			IsRequired:     !column.IsNullable,
			OriginalColumn: attr,
		})
	}
	if len(entity.KeyAttributes) > 0 {
		label.PrimaryKey = naming.PropertyName(entity.KeyAttributes[0])
	}
	return label
}

func relationshipToEdge(schema *models.DatabaseSchema, rel *models.ConceptualRelationship) *models.RelationshipType {
	rt := &models.RelationshipType{
		Name:                rel.Name,
		FromLabel:           naming.Label(rel.SourceEntity),
		ToLabel:             naming.Label(rel.TargetEntity),
		SourceForeignKey:    rel.SourceForeignKey,
		SourceJunctionTable: rel.SourceJunctionTable,
		Cardinality:         string(rel.Cardinality),
		Semantics:           string(rel.Semantics),
	}

	if len(rel.Attributes) == 0 || rel.SourceJunctionTable == "" {
		return rt
	}
	junction := schema.GetTable(rel.SourceJunctionTable)
	if junction == nil {
		return rt
	}
	for _, attr := range rel.Attributes {
		column := junction.GetColumn(attr)
		if column == nil {
			continue
		}
		rt.AddProperty(&models.Property{
			Name:           naming.PropertyName(attr),
			Type:           models.PropertyTypeFromSQL(column.DataType),
			IsRequired:     !column.IsNullable,
			OriginalColumn: attr,
		})
	}
	return rt
}

// schemaTransformer maps the relational schema directly onto the graph,
// bypassing semantic enrichment.
type schemaTransformer struct {
	schema *models.DatabaseSchema
	graph  *models.GraphModel
	logger *zap.Logger
}

var _ Transformer = (*schemaTransformer)(nil)

// NewSchemaTransformer creates the fallback, raw-schema-driven transformer
// variant.
func NewSchemaTransformer(schema *models.DatabaseSchema, logger *zap.Logger) Transformer {
	return &schemaTransformer{
		schema: schema,
		logger: logger.Named("graph-transformer"),
	}
}

func (t *schemaTransformer) Transform() (*models.GraphModel, error) {
	if t.schema == nil {
		return nil, apperrors.ErrNoModel
	}

	t.logger.Info("transforming schema directly to graph",
		zap.Int("tables", t.schema.TableCount()))

	graph := models.NewGraphModel(t.schema.DatabaseName+"_graph", t.schema.DatabaseName)

	entityTables := t.schema.EntityTables()
	for _, table := range entityTables {
		graph.AddNodeLabel(tableToNodeLabel(table))
	}
	for _, table := range entityTables {
		for _, fk := range table.ForeignKeys {
			graph.AddRelationshipType(foreignKeyToEdge(table, fk))
		}
	}
	for _, junction := range t.schema.JunctionTables() {
		if rt := junctionToEdge(junction); rt != nil {
			graph.AddRelationshipType(rt)
		}
	}

	t.logger.Info("graph model built",
		zap.Int("node_labels", graph.NodeLabelCount()),
		zap.Int("relationship_types", graph.RelationshipTypeCount()))

	t.graph = graph
	return graph, nil
}

func (t *schemaTransformer) RowToNode(tableName string, row map[string]any) (map[string]any, error) {
	return rowToNode(t.schema, t.graph, tableName, row)
}

func tableToNodeLabel(table *models.Table) *models.NodeLabel {
	label := &models.NodeLabel{
		Name:        naming.Label(table.Name),
		SourceTable: table.Name,
	}

	fkColumns := make(map[string]bool, len(table.ForeignKeys))
	for _, fk := range table.ForeignKeys {
		fkColumns[fk.Column] = true
	}

	for _, column := range table.Columns {
		if fkColumns[column.Name] {
			continue
		}

		prop := &models.Property{
			Name:           naming.PropertyName(column.Name),
			Type:           models.PropertyTypeFromSQL(column.DataType),
			IsRequired:     !column.IsNullable,
			OriginalColumn: column.Name,
		}
		if table.PrimaryKey != nil {
			for _, pkCol := range table.PrimaryKey.Columns {
				if pkCol == column.Name {
					prop.IsIndexed = true
					label.PrimaryKey = prop.Name
					break
				}
			}
		}
		label.AddProperty(prop)
	}

	for _, index := range table.Indexes {
		for _, col := range index.Columns {
			label.AddIndex(naming.PropertyName(col))
		}
	}
	return label
}

func foreignKeyToEdge(table *models.Table, fk *models.ForeignKey) *models.RelationshipType {
	name := fk.RelationshipName
	if name == "" {
		name = naming.RelationshipTypeName(table.Name, fk.ReferencedTable)
	}
	return &models.RelationshipType{
		Name:             name,
		FromLabel:        naming.Label(table.Name),
		ToLabel:          naming.Label(fk.ReferencedTable),
		SourceForeignKey: fk.Name,
	}
}

func junctionToEdge(table *models.Table) *models.RelationshipType {
	if len(table.ForeignKeys) != 2 {
		return nil
	}
	fk1, fk2 := table.ForeignKeys[0], table.ForeignKeys[1]

	rt := &models.RelationshipType{
		Name:                strings.ToUpper(naming.Label(table.Name)),
		FromLabel:           naming.Label(fk1.ReferencedTable),
		ToLabel:             naming.Label(fk2.ReferencedTable),
		SourceJunctionTable: table.Name,
	}

	fkColumns := map[string]bool{fk1.Column: true, fk2.Column: true}
	for _, column := range table.Columns {
		if fkColumns[column.Name] {
			continue
		}
		rt.AddProperty(&models.Property{
			Name:           naming.PropertyName(column.Name),
			Type:           models.PropertyTypeFromSQL(column.DataType),
			IsRequired:     !column.IsNullable,
			OriginalColumn: column.Name,
		})
	}
	return rt
}

// rowToNode is the row conversion shared by both transformer variants.
func rowToNode(schema *models.DatabaseSchema, graph *models.GraphModel, tableName string, row map[string]any) (map[string]any, error) {
	labelName := naming.Label(tableName)
	if graph == nil || graph.GetNodeLabel(labelName) == nil {
		return nil, fmt.Errorf("table %s: %w", tableName, apperrors.ErrNoNodeMapping)
	}

	table := schema.GetTable(tableName)
	if table == nil {
		return nil, fmt.Errorf("table %s: %w", tableName, apperrors.ErrTableNotFound)
	}

	fkColumns := make(map[string]bool, len(table.ForeignKeys))
	for _, fk := range table.ForeignKeys {
		fkColumns[fk.Column] = true
	}

	properties := make(map[string]any)
	for _, column := range table.Columns {
		if fkColumns[column.Name] {
			continue
		}
		properties[naming.PropertyName(column.Name)] = convertValue(row[column.Name], column.DataType)
	}
	return properties, nil
}

// convertValue prepares a SQL value for the graph store. Temporal values
// are stringified; JSON text is decoded into nested structures.
func convertValue(value any, sqlType string) any {
	if value == nil {
		return nil
	}

	lower := strings.ToLower(sqlType)
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
		if ts, ok := value.(time.Time); ok {
			return ts.Format(time.RFC3339)
		}
		return fmt.Sprintf("%v", value)
	}
	if strings.Contains(lower, "json") {
		if s, ok := value.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return decoded
			}
		}
		return value
	}
	return value
}
