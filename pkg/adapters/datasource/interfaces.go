// Package datasource defines the connector contract for relational source
// databases and the metadata records schema analysis consumes.
package datasource

import "context"

// Connector introspects and reads one relational database.
// Each implementation owns its connection and must be closed when done.
type Connector interface {
	// TestConnection verifies the database is reachable with valid
	// credentials. Returns nil if the connection is healthy.
	TestConnection(ctx context.Context) error

	// DatabaseName returns the connected database's name.
	DatabaseName() string

	// Type returns the connector's database type ("mysql", "postgres",
	// "sqlserver").
	Type() string

	// GetTables returns the names of all base tables, sorted.
	GetTables(ctx context.Context, schema string) ([]string, error)

	// GetColumns returns column metadata for a table in ordinal order.
	GetColumns(ctx context.Context, table, schema string) ([]ColumnMetadata, error)

	// GetPrimaryKey returns the table's primary key, or nil if it has none.
	GetPrimaryKey(ctx context.Context, table, schema string) (*PrimaryKeyMetadata, error)

	// GetForeignKeys returns the table's foreign keys with their
	// referential actions.
	GetForeignKeys(ctx context.Context, table, schema string) ([]ForeignKeyMetadata, error)

	// GetIndexes returns the table's non-primary indexes.
	GetIndexes(ctx context.Context, table, schema string) ([]IndexMetadata, error)

	// GetRowCount returns the number of rows in a table.
	GetRowCount(ctx context.Context, table, schema string) (int64, error)

	// FetchRows reads one batch of rows as column-name→value maps.
	FetchRows(ctx context.Context, table, schema string, limit, offset int) ([]map[string]any, error)

	// Close releases the database connection.
	Close() error
}

// ColumnMetadata describes one column as reported by the database.
type ColumnMetadata struct {
	Name            string
	DataType        string
	IsNullable      bool
	MaxLength       *int64
	Precision       *int64
	Scale           *int64
	DefaultValue    *string
	IsAutoIncrement bool
	OrdinalPosition int
}

// PrimaryKeyMetadata describes a primary key constraint.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a foreign key constraint.
type ForeignKeyMetadata struct {
	Name             string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
	OnUpdate         string
}

// IndexMetadata describes an index.
type IndexMetadata struct {
	Name     string
	Columns  []string
	IsUnique bool
}
