package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/models"
)

// buildSchoolSchema assembles a schema exercising every classification:
// class-table inheritance (people/employees), weak entities with cascade
// (orders/order_items), one-to-one via unique index (users/profiles),
// mandatory and optional associations, and a junction table.
func buildSchoolSchema() *models.DatabaseSchema {
	schema := models.NewDatabaseSchema("school", "postgres")

	schema.AddTable(&models.Table{
		Name: "departments",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "name", DataType: "varchar(100)"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "departments_pkey", Columns: []string{"id"}},
		RowCount:   5,
	})

	schema.AddTable(&models.Table{
		Name: "people",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "name", DataType: "varchar(100)"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "people_pkey", Columns: []string{"id"}},
		RowCount:   50,
	})

	// Note: a second FK here would make the PK a subset of the FK columns
	// and flip employees into a junction table.
	schema.AddTable(&models.Table{
		Name: "employees",
		Columns: []*models.Column{
			{Name: "id", DataType: "integer"},
			{Name: "salary", DataType: "numeric(10,2)", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "employees_pkey", Columns: []string{"id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "employees_id_fkey", Column: "id", ReferencedTable: "people", ReferencedColumn: "id"},
		},
		RowCount: 20,
	})

	schema.AddTable(&models.Table{
		Name: "students",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "name", DataType: "varchar(100)"},
			{Name: "email", DataType: "varchar(255)"},
			{Name: "department_id", DataType: "integer", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "students_pkey", Columns: []string{"id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "students_department_id_fkey", Column: "department_id", ReferencedTable: "departments", ReferencedColumn: "id"},
		},
		Indexes: []*models.Index{
			{Name: "students_email_key", Columns: []string{"email"}, IsUnique: true},
		},
		RowCount: 200,
	})

	schema.AddTable(&models.Table{
		Name: "courses",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "title", DataType: "varchar(200)"},
			{Name: "department_id", DataType: "integer"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "courses_pkey", Columns: []string{"id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "courses_department_id_fkey", Column: "department_id", ReferencedTable: "departments", ReferencedColumn: "id"},
		},
		RowCount: 30,
	})

	schema.AddTable(&models.Table{
		Name: "enrollments",
		Columns: []*models.Column{
			{Name: "student_id", DataType: "integer"},
			{Name: "course_id", DataType: "integer"},
			{Name: "grade", DataType: "varchar(2)", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "enrollments_pkey", Columns: []string{"student_id", "course_id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "enrollments_student_id_fkey", Column: "student_id", ReferencedTable: "students", ReferencedColumn: "id"},
			{Name: "enrollments_course_id_fkey", Column: "course_id", ReferencedTable: "courses", ReferencedColumn: "id"},
		},
		RowCount: 500,
	})

	schema.AddTable(&models.Table{
		Name: "orders",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "order_ref", DataType: "varchar(20)"},
			{Name: "total", DataType: "numeric(10,2)", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "orders_pkey", Columns: []string{"id"}},
		Indexes: []*models.Index{
			{Name: "orders_order_ref_key", Columns: []string{"order_ref"}, IsUnique: true},
		},
		RowCount: 40,
	})

	schema.AddTable(&models.Table{
		Name: "order_items",
		Columns: []*models.Column{
			{Name: "order_ref", DataType: "varchar(20)"},
			{Name: "line_no", DataType: "integer"},
			{Name: "qty", DataType: "integer"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "order_items_pkey", Columns: []string{"order_ref", "line_no"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "order_items_order_ref_fkey", Column: "order_ref", ReferencedTable: "orders", ReferencedColumn: "order_ref", OnDelete: "CASCADE"},
		},
		RowCount: 120,
	})

	schema.AddTable(&models.Table{
		Name: "users",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "name", DataType: "varchar(100)"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "users_pkey", Columns: []string{"id"}},
		RowCount:   60,
	})

	schema.AddTable(&models.Table{
		Name: "profiles",
		Columns: []*models.Column{
			{Name: "id", DataType: "serial"},
			{Name: "user_id", DataType: "integer"},
			{Name: "bio", DataType: "text", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "profiles_pkey", Columns: []string{"id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "profiles_user_id_fkey", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"},
		},
		Indexes: []*models.Index{
			{Name: "profiles_user_id_key", Columns: []string{"user_id"}, IsUnique: true},
		},
		RowCount: 60,
	})

	return schema
}

func findRelationship(model *models.ConceptualModel, name, source string) *models.ConceptualRelationship {
	for _, rel := range model.Relationships {
		if rel.Name == name && rel.SourceEntity == source {
			return rel
		}
	}
	return nil
}

func TestEnrichInheritance(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	employees := schema.GetTable("employees")
	people := schema.GetTable("people")

	require.False(t, employees.IsJunctionTable(), "subclass tables must stay entities")
	assert.True(t, employees.IsSubclass)
	assert.Equal(t, "people", employees.SuperclassTable)
	assert.True(t, people.IsSuperclass)

	fk := employees.ForeignKeys[0]
	assert.True(t, fk.IsInheritance)
	assert.Equal(t, "IS_A_PEOPLE", fk.RelationshipName)
	assert.Equal(t, models.Cardinality1To1, fk.Cardinality)

	assert.Contains(t, model.InheritanceHierarchies, []string{"people", "employees"})

	rel := findRelationship(model, "IS_A_PEOPLE", "employees")
	require.NotNil(t, rel)
	assert.Equal(t, models.SemanticsInheritance, rel.Semantics)
	assert.Equal(t, models.OneToOne, rel.Cardinality)
}

func TestEnrichWeakEntityAndComposition(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	items := schema.GetTable("order_items")
	assert.True(t, items.IsWeakEntity)
	assert.Equal(t, "orders", items.OwnerTable)
	assert.Equal(t, []string{"order_items"}, model.WeakEntityGroups["orders"])

	entity := model.GetEntity("order_items")
	require.NotNil(t, entity)
	assert.Equal(t, models.EntityTypeWeak, entity.EntityType)
	assert.Equal(t, "orders", entity.OwnerEntity)

	rel := findRelationship(model, "PART_OF_ORDERS", "order_items")
	require.NotNil(t, rel)
	assert.Equal(t, models.SemanticsComposition, rel.Semantics, "identifying FK with CASCADE is composition")
	assert.True(t, rel.IsMandatorySource)
}

func TestEnrichCardinality(t *testing.T) {
	schema := buildSchoolSchema()
	_, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	profileFK := schema.GetTable("profiles").ForeignKeys[0]
	assert.Equal(t, models.Cardinality1To1, profileFK.Cardinality, "single-column unique index makes the FK one-to-one")

	courseFK := schema.GetTable("courses").ForeignKeys[0]
	assert.Equal(t, models.CardinalityNTo1, courseFK.Cardinality)
}

func TestEnrichRelationshipNaming(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	// Keyword match on the referenced table.
	assert.Equal(t, "WORKS_IN", schema.GetTable("courses").ForeignKeys[0].RelationshipName)
	// Keyword match on the FK column.
	assert.Equal(t, "USED_BY", schema.GetTable("profiles").ForeignKeys[0].RelationshipName)
	// Fallback with aggregation prefix.
	assert.Equal(t, "PART_OF_ORDERS", schema.GetTable("order_items").ForeignKeys[0].RelationshipName)

	// Mandatory FK means aggregation; nullable means plain association.
	coursesRel := findRelationship(model, "WORKS_IN", "courses")
	require.NotNil(t, coursesRel)
	assert.Equal(t, models.SemanticsAggregation, coursesRel.Semantics)
	assert.True(t, coursesRel.IsMandatorySource)

	studentsRel := findRelationship(model, "WORKS_IN", "students")
	require.NotNil(t, studentsRel)
	assert.Equal(t, models.SemanticsAssociation, studentsRel.Semantics)
	assert.False(t, studentsRel.IsMandatorySource)
}

func TestEnrichJunctionTable(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	assert.Nil(t, model.GetEntity("enrollments"), "junction tables never become entities")

	rel := findRelationship(model, "ENROLLMENTS", "students")
	require.NotNil(t, rel)
	assert.Equal(t, "courses", rel.TargetEntity)
	assert.Equal(t, models.ManyToMany, rel.Cardinality)
	assert.Equal(t, models.SemanticsAssociation, rel.Semantics)
	assert.Equal(t, "enrollments", rel.SourceJunctionTable)
	assert.Equal(t, []string{"grade"}, rel.Attributes)
}

func TestEnrichEntityAttributes(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	assert.Equal(t, 9, model.EntityCount())

	employees := model.GetEntity("employees")
	require.NotNil(t, employees)
	assert.Equal(t, "people", employees.Superclass)
	// The inheritance FK column stays an attribute.
	assert.ElementsMatch(t, []string{"id", "salary"}, employees.Attributes)
	assert.Equal(t, []string{"id"}, employees.KeyAttributes)

	people := model.GetEntity("people")
	require.NotNil(t, people)
	assert.Contains(t, people.Subclasses, "employees")
}

func TestEnrichStructuralSerialization(t *testing.T) {
	schema := buildSchoolSchema()
	model, err := NewSemanticEnricher(zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	m := model.ToMap()
	entities, ok := m["entities"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, entities, model.EntityCount())

	relationships, ok := m["relationships"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, relationships, len(model.Relationships))

	stats, ok := m["statistics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, model.EntityCount(), stats["total_entities"])
	assert.Equal(t, len(model.Relationships), stats["total_relationships"])
}

func TestEnrichIsDeterministic(t *testing.T) {
	first, err := NewSemanticEnricher(zap.NewNop()).Enrich(buildSchoolSchema())
	require.NoError(t, err)
	second, err := NewSemanticEnricher(zap.NewNop()).Enrich(buildSchoolSchema())
	require.NoError(t, err)

	var firstEntities, secondEntities []string
	for _, e := range first.Entities() {
		firstEntities = append(firstEntities, e.Name)
	}
	for _, e := range second.Entities() {
		secondEntities = append(secondEntities, e.Name)
	}
	assert.Equal(t, firstEntities, secondEntities)

	var firstRels, secondRels []string
	for _, r := range first.Relationships {
		firstRels = append(firstRels, r.Name+"/"+r.SourceEntity+"/"+string(r.Cardinality))
	}
	for _, r := range second.Relationships {
		secondRels = append(secondRels, r.Name+"/"+r.SourceEntity+"/"+string(r.Cardinality))
	}
	assert.Equal(t, firstRels, secondRels)

	assert.Equal(t, first.InheritanceHierarchies, second.InheritanceHierarchies)
}

func TestEnricherCustomPatterns(t *testing.T) {
	schema := models.NewDatabaseSchema("crm", "mysql")
	schema.AddTable(&models.Table{
		Name: "accounts",
		Columns: []*models.Column{
			{Name: "id", DataType: "int"},
		},
		PrimaryKey: &models.PrimaryKey{Name: "PRIMARY", Columns: []string{"id"}},
	})
	schema.AddTable(&models.Table{
		Name: "tickets",
		Columns: []*models.Column{
			{Name: "id", DataType: "int"},
			{Name: "account_id", DataType: "int", IsNullable: true},
		},
		PrimaryKey: &models.PrimaryKey{Name: "PRIMARY", Columns: []string{"id"}},
		ForeignKeys: []*models.ForeignKey{
			{Name: "fk_tickets_account", Column: "account_id", ReferencedTable: "accounts", ReferencedColumn: "id"},
		},
	})

	patterns := []NamePattern{{Keyword: "account", Verb: "FILED_AGAINST"}}
	_, err := NewSemanticEnricherWithPatterns(patterns, zap.NewNop()).Enrich(schema)
	require.NoError(t, err)

	assert.Equal(t, "FILED_AGAINST", schema.GetTable("tickets").ForeignKeys[0].RelationshipName)
}
