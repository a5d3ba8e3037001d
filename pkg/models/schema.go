package models

// Cardinality values carried on foreign keys and relationships.
const (
	Cardinality1To1 = "1:1"
	Cardinality1ToN = "1:N"
	CardinalityNTo1 = "N:1"
	CardinalityNToM = "N:M"
)

// Column represents a column of a source table.
type Column struct {
	Name            string `json:"name" yaml:"name"`
	DataType        string `json:"data_type" yaml:"data_type"`
	IsNullable      bool   `json:"is_nullable" yaml:"is_nullable"`
	MaxLength       *int64 `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Precision       *int64 `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale           *int64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	DefaultValue    *string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	IsAutoIncrement bool   `json:"is_auto_increment" yaml:"is_auto_increment"`
	OrdinalPosition int    `json:"ordinal_position" yaml:"ordinal_position"`
}

// PrimaryKey represents a primary key constraint with its ordered columns.
type PrimaryKey struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// ForeignKey represents a foreign key constraint.
// The enrichment fields are written by the semantic enricher and must not
// be read by other components until enrichment has completed.
type ForeignKey struct {
	Name             string `json:"name" yaml:"name"`
	Column           string `json:"column" yaml:"column"`
	ReferencedTable  string `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumn string `json:"referenced_column" yaml:"referenced_column"`
	OnDelete         string `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate         string `json:"on_update,omitempty" yaml:"on_update,omitempty"`

	// Enrichment annotations.
	Cardinality      string `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	RelationshipName string `json:"relationship_name,omitempty" yaml:"relationship_name,omitempty"`
	IsInheritance    bool   `json:"is_inheritance" yaml:"is_inheritance"`
	IsAggregation    bool   `json:"is_aggregation" yaml:"is_aggregation"`
	IsWeakEntity     bool   `json:"is_weak_entity" yaml:"is_weak_entity"`
}

// Index represents a database index.
type Index struct {
	Name     string   `json:"name" yaml:"name"`
	Columns  []string `json:"columns" yaml:"columns"`
	IsUnique bool     `json:"is_unique" yaml:"is_unique"`
}

// Table represents a source table with its constraints and the semantic
// classification written by the enricher.
type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Schema      string       `json:"schema" yaml:"schema"`
	Columns     []*Column    `json:"columns" yaml:"columns"`
	PrimaryKey  *PrimaryKey  `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys" yaml:"foreign_keys"`
	Indexes     []*Index     `json:"indexes" yaml:"indexes"`
	RowCount    int64        `json:"row_count" yaml:"row_count"`

	// Semantic classification annotations.
	IsSuperclass    bool   `json:"is_superclass" yaml:"is_superclass"`
	IsSubclass      bool   `json:"is_subclass" yaml:"is_subclass"`
	SuperclassTable string `json:"superclass_table,omitempty" yaml:"superclass_table,omitempty"`
	IsWeakEntity    bool   `json:"is_weak_entity" yaml:"is_weak_entity"`
	OwnerTable      string `json:"owner_table,omitempty" yaml:"owner_table,omitempty"`
}

// GetColumn returns the column with the given name, or nil.
func (t *Table) GetColumn(name string) *Column {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// IsJunctionTable reports whether the table encodes a many-to-many
// association: exactly two foreign keys whose local columns cover the
// primary key. Junction tables are never treated as entities.
func (t *Table) IsJunctionTable() bool {
	if len(t.ForeignKeys) != 2 {
		return false
	}
	if t.PrimaryKey == nil {
		return false
	}

	fkColumns := make(map[string]bool, 2)
	for _, fk := range t.ForeignKeys {
		fkColumns[fk.Column] = true
	}
	for _, pkCol := range t.PrimaryKey.Columns {
		if !fkColumns[pkCol] {
			return false
		}
	}
	return true
}

// ToMap renders the table as a plain nested map for persistence or diffing.
func (t *Table) ToMap() map[string]any {
	columns := make([]map[string]any, 0, len(t.Columns))
	for _, col := range t.Columns {
		columns = append(columns, map[string]any{
			"name":              col.Name,
			"data_type":         col.DataType,
			"is_nullable":       col.IsNullable,
			"is_auto_increment": col.IsAutoIncrement,
			"ordinal_position":  col.OrdinalPosition,
		})
	}

	fks := make([]map[string]any, 0, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		fks = append(fks, map[string]any{
			"name":              fk.Name,
			"column":            fk.Column,
			"referenced_table":  fk.ReferencedTable,
			"referenced_column": fk.ReferencedColumn,
			"on_delete":         fk.OnDelete,
			"on_update":         fk.OnUpdate,
			"cardinality":       fk.Cardinality,
			"relationship_name": fk.RelationshipName,
			"is_inheritance":    fk.IsInheritance,
			"is_aggregation":    fk.IsAggregation,
			"is_weak_entity":    fk.IsWeakEntity,
		})
	}

	indexes := make([]map[string]any, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		indexes = append(indexes, map[string]any{
			"name":      idx.Name,
			"columns":   idx.Columns,
			"is_unique": idx.IsUnique,
		})
	}

	m := map[string]any{
		"name":         t.Name,
		"schema":       t.Schema,
		"columns":      columns,
		"foreign_keys": fks,
		"indexes":      indexes,
		"row_count":    t.RowCount,
		"is_junction":  t.IsJunctionTable(),
	}
	if t.PrimaryKey != nil {
		m["primary_key"] = map[string]any{
			"name":    t.PrimaryKey.Name,
			"columns": t.PrimaryKey.Columns,
		}
	}
	return m
}

// DatabaseSchema represents a complete source schema snapshot.
// Tables are stored by name; tableOrder preserves insertion order so that
// enrichment passes iterate deterministically.
type DatabaseSchema struct {
	DatabaseName string `json:"database_name" yaml:"database_name"`
	DatabaseType string `json:"database_type" yaml:"database_type"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`

	tables     map[string]*Table
	tableOrder []string
}

// NewDatabaseSchema creates an empty schema snapshot.
func NewDatabaseSchema(name, dbType string) *DatabaseSchema {
	return &DatabaseSchema{
		DatabaseName: name,
		DatabaseType: dbType,
		tables:       make(map[string]*Table),
	}
}

// AddTable registers a table. Re-adding a name replaces the table but keeps
// its original position in the iteration order.
func (s *DatabaseSchema) AddTable(table *Table) {
	if _, exists := s.tables[table.Name]; !exists {
		s.tableOrder = append(s.tableOrder, table.Name)
	}
	s.tables[table.Name] = table
}

// GetTable returns the table with the given name, or nil.
func (s *DatabaseSchema) GetTable(name string) *Table {
	return s.tables[name]
}

// Tables returns all tables in insertion order.
func (s *DatabaseSchema) Tables() []*Table {
	out := make([]*Table, 0, len(s.tableOrder))
	for _, name := range s.tableOrder {
		out = append(out, s.tables[name])
	}
	return out
}

// EntityTables returns all non-junction tables in insertion order.
func (s *DatabaseSchema) EntityTables() []*Table {
	var out []*Table
	for _, t := range s.Tables() {
		if !t.IsJunctionTable() {
			out = append(out, t)
		}
	}
	return out
}

// JunctionTables returns all junction tables in insertion order.
func (s *DatabaseSchema) JunctionTables() []*Table {
	var out []*Table
	for _, t := range s.Tables() {
		if t.IsJunctionTable() {
			out = append(out, t)
		}
	}
	return out
}

// TableCount returns the number of tables in the schema.
func (s *DatabaseSchema) TableCount() int {
	return len(s.tables)
}

// TotalRowCount sums the row counts of all tables.
func (s *DatabaseSchema) TotalRowCount() int64 {
	var total int64
	for _, t := range s.tables {
		total += t.RowCount
	}
	return total
}

// ToMap renders the schema as a plain nested map.
func (s *DatabaseSchema) ToMap() map[string]any {
	tables := make(map[string]any, len(s.tables))
	for name, t := range s.tables {
		tables[name] = t.ToMap()
	}
	return map[string]any{
		"database_name":        s.DatabaseName,
		"database_type":        s.DatabaseType,
		"version":              s.Version,
		"tables":               tables,
		"table_count":          len(s.tables),
		"entity_table_count":   len(s.EntityTables()),
		"junction_table_count": len(s.JunctionTables()),
	}
}
