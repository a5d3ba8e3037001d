package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/models"
	"github.com/graphshift/graphshift/pkg/naming"
)

// NamePattern maps a keyword found in a foreign key column or referenced
// table name to a business-meaningful relationship verb.
type NamePattern struct {
	Keyword string
	Verb    string
}

// DefaultNamePatterns is the ordered verb table used for relationship
// naming. Order matters: the first keyword that matches wins.
var DefaultNamePatterns = []NamePattern{
	{"manager", "MANAGES"},
	{"employee", "EMPLOYS"},
	{"supervisor", "SUPERVISES"},
	{"owner", "OWNS"},
	{"creator", "CREATES"},
	{"author", "AUTHORED_BY"},
	{"user", "USED_BY"},
	{"customer", "PURCHASED_BY"},
	{"department", "WORKS_IN"},
	{"company", "WORKS_FOR"},
	{"category", "BELONGS_TO"},
	{"parent", "CHILD_OF"},
	{"project", "ASSIGNED_TO"},
}

// SemanticEnricher derives a conceptual model from a relational schema by
// recognizing structural patterns: class-table inheritance, weak entities,
// ownership, cardinality, and junction tables.
//
// Enrichment also annotates the schema's tables and foreign keys in place,
// so the fallback transformation path can reuse the classification.
type SemanticEnricher interface {
	Enrich(schema *models.DatabaseSchema) (*models.ConceptualModel, error)
}

type semanticEnricher struct {
	patterns []NamePattern
	logger   *zap.Logger
}

var _ SemanticEnricher = (*semanticEnricher)(nil)

// NewSemanticEnricher creates an enricher with the default naming patterns.
func NewSemanticEnricher(logger *zap.Logger) SemanticEnricher {
	return NewSemanticEnricherWithPatterns(DefaultNamePatterns, logger)
}

// NewSemanticEnricherWithPatterns creates an enricher with a custom ordered
// verb table for relationship naming.
func NewSemanticEnricherWithPatterns(patterns []NamePattern, logger *zap.Logger) SemanticEnricher {
	return &semanticEnricher{
		patterns: patterns,
		logger:   logger.Named("semantic-enricher"),
	}
}

func (e *semanticEnricher) Enrich(schema *models.DatabaseSchema) (*models.ConceptualModel, error) {
	model := models.NewConceptualModel(schema.DatabaseName+"_conceptual", schema.DatabaseName)

	e.logger.Info("starting semantic enrichment", zap.String("database", schema.DatabaseName))

	e.detectInheritance(schema, model)
	e.detectWeakEntitiesAndAggregation(schema, model)
	e.inferCardinality(schema)
	e.generateRelationshipNames(schema)
	e.createEntities(schema, model)
	e.createRelationships(schema, model)

	e.logger.Info("semantic enrichment complete",
		zap.Int("entities", model.EntityCount()),
		zap.Int("relationships", len(model.Relationships)))

	return model, nil
}

// detectInheritance recognizes class-table inheritance: a subclass table
// whose primary key column is also a foreign key into the superclass's
// primary key.
func (e *semanticEnricher) detectInheritance(schema *models.DatabaseSchema, model *models.ConceptualModel) {
	for _, table := range schema.Tables() {
		if table.PrimaryKey == nil || len(table.ForeignKeys) == 0 {
			continue
		}

		pkColumns := toSet(table.PrimaryKey.Columns)

		for _, fk := range table.ForeignKeys {
			if !pkColumns[fk.Column] {
				continue
			}
			referenced := schema.GetTable(fk.ReferencedTable)
			if referenced == nil || referenced.PrimaryKey == nil {
				continue
			}
			if !toSet(referenced.PrimaryKey.Columns)[fk.ReferencedColumn] {
				continue
			}

			e.logger.Info("detected inheritance",
				zap.String("subclass", table.Name),
				zap.String("superclass", fk.ReferencedTable))

			table.IsSubclass = true
			table.SuperclassTable = fk.ReferencedTable
			referenced.IsSuperclass = true

			fk.IsInheritance = true
			fk.RelationshipName = "IS_A_" + strings.ToUpper(fk.ReferencedTable)
			fk.Cardinality = models.Cardinality1To1

			model.AddToHierarchy(fk.ReferencedTable, table.Name)
		}
	}
}

// detectWeakEntitiesAndAggregation recognizes identifying relationships
// (FK is part of the PK), cascade-delete ownership, and mandatory
// participation. The first identifying FK determines a weak entity's
// owner; further identifying FKs only contribute aggregation.
func (e *semanticEnricher) detectWeakEntitiesAndAggregation(schema *models.DatabaseSchema, model *models.ConceptualModel) {
	for _, table := range schema.Tables() {
		if table.IsSubclass || len(table.ForeignKeys) == 0 {
			continue
		}

		for _, fk := range table.ForeignKeys {
			if fk.IsInheritance {
				continue
			}

			isWeak := false
			isAggregation := false

			if table.PrimaryKey != nil && toSet(table.PrimaryKey.Columns)[fk.Column] {
				isWeak = true
				isAggregation = true
			}
			if strings.Contains(strings.ToUpper(fk.OnDelete), "CASCADE") {
				isAggregation = true
			}
			if col := table.GetColumn(fk.Column); col != nil && !col.IsNullable {
				isAggregation = true
			}

			switch {
			case isWeak && !table.IsWeakEntity:
				e.logger.Info("detected weak entity",
					zap.String("table", table.Name),
					zap.String("owner", fk.ReferencedTable))

				table.IsWeakEntity = true
				table.OwnerTable = fk.ReferencedTable
				fk.IsWeakEntity = true
				fk.IsAggregation = true
				model.AddWeakEntity(fk.ReferencedTable, table.Name)

			case isAggregation:
				e.logger.Info("detected aggregation",
					zap.String("table", table.Name),
					zap.String("whole", fk.ReferencedTable))
				fk.IsAggregation = true
			}
		}
	}
}

// inferCardinality classifies each remaining FK as 1:1 or N:1. A FK is
// one-to-one when a single-column unique index covers it, or when it is
// itself the table's entire single-column primary key.
func (e *semanticEnricher) inferCardinality(schema *models.DatabaseSchema) {
	for _, table := range schema.Tables() {
		for _, fk := range table.ForeignKeys {
			if fk.Cardinality != "" {
				continue
			}

			isUnique := false
			for _, index := range table.Indexes {
				if index.IsUnique && len(index.Columns) == 1 && index.Columns[0] == fk.Column {
					isUnique = true
					break
				}
			}
			if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 &&
				table.PrimaryKey.Columns[0] == fk.Column {
				isUnique = true
			}

			if isUnique {
				fk.Cardinality = models.Cardinality1To1
			} else {
				fk.Cardinality = models.CardinalityNTo1
			}
		}
	}
}

// generateRelationshipNames assigns business-meaningful names to unnamed
// FKs: first by matching the verb table against the FK column and
// referenced table name, then falling back to HAS_/PART_OF_ forms.
func (e *semanticEnricher) generateRelationshipNames(schema *models.DatabaseSchema) {
	for _, table := range schema.Tables() {
		for _, fk := range table.ForeignKeys {
			if fk.RelationshipName != "" {
				continue
			}

			fkLower := strings.ToLower(fk.Column)
			fkLower = strings.ReplaceAll(fkLower, "_id", "")
			fkLower = strings.ReplaceAll(fkLower, "id", "")
			refLower := strings.ToLower(fk.ReferencedTable)

			var name string
			for _, p := range e.patterns {
				if strings.Contains(fkLower, p.Keyword) || strings.Contains(refLower, p.Keyword) {
					name = p.Verb
					break
				}
			}

			if name == "" {
				cleanRef := strings.ReplaceAll(fk.ReferencedTable, "tbl", "")
				cleanRef = strings.ToUpper(strings.ReplaceAll(cleanRef, "_", ""))
				if fk.IsAggregation {
					name = "PART_OF_" + cleanRef
				} else {
					name = "HAS_" + cleanRef
				}
			}

			fk.RelationshipName = name
		}
	}
}

// createEntities builds a conceptual entity per non-junction table. FK
// columns are lifted out of the attribute list; inheritance FKs stay,
// since the subclass shares its key with the superclass.
func (e *semanticEnricher) createEntities(schema *models.DatabaseSchema, model *models.ConceptualModel) {
	for _, table := range schema.Tables() {
		if table.IsJunctionTable() {
			continue
		}

		entityType := models.EntityTypeStrong
		if table.IsWeakEntity {
			entityType = models.EntityTypeWeak
		}

		fkColumns := make(map[string]bool)
		for _, fk := range table.ForeignKeys {
			if !fk.IsInheritance {
				fkColumns[fk.Column] = true
			}
		}

		var attributes []string
		for _, col := range table.Columns {
			if !fkColumns[col.Name] {
				attributes = append(attributes, col.Name)
			}
		}

		var keyAttributes []string
		if table.PrimaryKey != nil {
			keyAttributes = table.PrimaryKey.Columns
		}

		entity := &models.ConceptualEntity{
			Name:          table.Name,
			EntityType:    entityType,
			SourceTable:   table.Name,
			Attributes:    attributes,
			KeyAttributes: keyAttributes,
		}
		if table.IsSubclass {
			entity.Superclass = table.SuperclassTable
		}
		if table.IsWeakEntity {
			entity.OwnerEntity = table.OwnerTable
		}
		if table.IsSuperclass {
			for _, other := range schema.Tables() {
				if other.IsSubclass && other.SuperclassTable == table.Name {
					entity.Subclasses = append(entity.Subclasses, other.Name)
				}
			}
		}

		model.AddEntity(entity)
	}
}

// createRelationships turns enriched FKs into typed relationships and
// junction tables into many-to-many associations between the two
// referenced tables.
func (e *semanticEnricher) createRelationships(schema *models.DatabaseSchema, model *models.ConceptualModel) {
	for _, table := range schema.Tables() {
		if table.IsJunctionTable() {
			continue
		}

		for _, fk := range table.ForeignKeys {
			var semantics models.RelationshipSemantics
			switch {
			case fk.IsInheritance:
				semantics = models.SemanticsInheritance
			case (fk.IsAggregation || fk.IsWeakEntity) &&
				strings.Contains(strings.ToUpper(fk.OnDelete), "CASCADE"):
				semantics = models.SemanticsComposition
			case fk.IsAggregation || fk.IsWeakEntity:
				semantics = models.SemanticsAggregation
			default:
				semantics = models.SemanticsAssociation
			}

			cardinality := fk.Cardinality
			if cardinality == "" {
				cardinality = models.CardinalityNTo1
			}

			name := fk.RelationshipName
			if name == "" {
				name = "REL_" + table.Name + "_" + fk.ReferencedTable
			}

			col := table.GetColumn(fk.Column)
			mandatory := col != nil && !col.IsNullable

			model.AddRelationship(&models.ConceptualRelationship{
				Name:              name,
				SourceEntity:      table.Name,
				TargetEntity:      fk.ReferencedTable,
				Cardinality:       models.ParseCardinality(cardinality),
				Semantics:         semantics,
				SourceForeignKey:  fk.Name,
				IsMandatorySource: mandatory,
			})
		}
	}

	for _, junction := range schema.JunctionTables() {
		if len(junction.ForeignKeys) < 2 {
			continue
		}
		fk1, fk2 := junction.ForeignKeys[0], junction.ForeignKeys[1]

		fkColumns := make(map[string]bool, len(junction.ForeignKeys))
		for _, fk := range junction.ForeignKeys {
			fkColumns[fk.Column] = true
		}
		var attributes []string
		for _, col := range junction.Columns {
			if !fkColumns[col.Name] {
				attributes = append(attributes, col.Name)
			}
		}

		model.AddRelationship(&models.ConceptualRelationship{
			Name:                naming.JunctionRelationshipName(junction.Name),
			SourceEntity:        fk1.ReferencedTable,
			TargetEntity:        fk2.ReferencedTable,
			Cardinality:         models.ManyToMany,
			Semantics:           models.SemanticsAssociation,
			SourceJunctionTable: junction.Name,
			Attributes:          attributes,
		})
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
