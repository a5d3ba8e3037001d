package services

import (
	"context"
	"fmt"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/loaders"
	"github.com/graphshift/graphshift/pkg/models"
)

// fakeTable is the introspection metadata one fakeConnector table reports.
type fakeTable struct {
	columns []datasource.ColumnMetadata
	pk      *datasource.PrimaryKeyMetadata
	fks     []datasource.ForeignKeyMetadata
	indexes []datasource.IndexMetadata
	rows    []map[string]any
}

// fakeConnector serves canned metadata and rows without a database.
type fakeConnector struct {
	database string
	dbType   string
	order    []string
	tables   map[string]*fakeTable
	failing  map[string]error

	fetchCalls int
}

var _ datasource.Connector = (*fakeConnector)(nil)

func newFakeConnector(database string) *fakeConnector {
	return &fakeConnector{
		database: database,
		dbType:   "postgres",
		tables:   make(map[string]*fakeTable),
		failing:  make(map[string]error),
	}
}

func (c *fakeConnector) addTable(name string, t *fakeTable) {
	c.order = append(c.order, name)
	c.tables[name] = t
}

func (c *fakeConnector) TestConnection(context.Context) error { return nil }
func (c *fakeConnector) DatabaseName() string                 { return c.database }
func (c *fakeConnector) Type() string                         { return c.dbType }
func (c *fakeConnector) Close() error                         { return nil }

func (c *fakeConnector) GetTables(context.Context, string) ([]string, error) {
	return c.order, nil
}

func (c *fakeConnector) GetColumns(_ context.Context, table, _ string) ([]datasource.ColumnMetadata, error) {
	if err := c.failing[table]; err != nil {
		return nil, err
	}
	return c.tables[table].columns, nil
}

func (c *fakeConnector) GetPrimaryKey(_ context.Context, table, _ string) (*datasource.PrimaryKeyMetadata, error) {
	return c.tables[table].pk, nil
}

func (c *fakeConnector) GetForeignKeys(_ context.Context, table, _ string) ([]datasource.ForeignKeyMetadata, error) {
	return c.tables[table].fks, nil
}

func (c *fakeConnector) GetIndexes(_ context.Context, table, _ string) ([]datasource.IndexMetadata, error) {
	return c.tables[table].indexes, nil
}

func (c *fakeConnector) GetRowCount(_ context.Context, table, _ string) (int64, error) {
	return int64(len(c.tables[table].rows)), nil
}

func (c *fakeConnector) FetchRows(_ context.Context, table, _ string, limit, offset int) ([]map[string]any, error) {
	c.fetchCalls++
	t, ok := c.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %s", table)
	}
	if offset >= len(t.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(t.rows) {
		end = len(t.rows)
	}
	return t.rows[offset:end], nil
}

// fakeLoader records everything loaded into it and serves configured counts.
type fakeLoader struct {
	cleared       bool
	schemaCreated bool

	nodes   map[string][]map[string]any
	rels    map[string][]loaders.RelationshipRecord
	idProps map[string][2]string

	nodeCounts map[string]int64
	relCounts  map[string]int64
}

var _ loaders.GraphLoader = (*fakeLoader)(nil)

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		nodes:      make(map[string][]map[string]any),
		rels:       make(map[string][]loaders.RelationshipRecord),
		idProps:    make(map[string][2]string),
		nodeCounts: make(map[string]int64),
		relCounts:  make(map[string]int64),
	}
}

func (l *fakeLoader) VerifyConnectivity(context.Context) error { return nil }
func (l *fakeLoader) Close(context.Context) error              { return nil }

func (l *fakeLoader) CreateSchema(context.Context, *models.GraphModel) error {
	l.schemaCreated = true
	return nil
}

func (l *fakeLoader) ClearDatabase(context.Context) error {
	l.cleared = true
	return nil
}

func (l *fakeLoader) LoadNodes(_ context.Context, label string, nodes []map[string]any) (int64, error) {
	l.nodes[label] = append(l.nodes[label], nodes...)
	return int64(len(nodes)), nil
}

func (l *fakeLoader) LoadRelationships(_ context.Context, rt *models.RelationshipType, records []loaders.RelationshipRecord, fromIDProp, toIDProp string) (int64, error) {
	l.rels[rt.Name] = append(l.rels[rt.Name], records...)
	l.idProps[rt.Name] = [2]string{fromIDProp, toIDProp}
	return int64(len(records)), nil
}

func (l *fakeLoader) NodeCount(_ context.Context, label string) (int64, error) {
	return l.nodeCounts[label], nil
}

func (l *fakeLoader) RelationshipCount(_ context.Context, relType string) (int64, error) {
	return l.relCounts[relType], nil
}

// buildBlogConnector wires a small blog database: two entity tables, one
// referencing the other, plus a junction table with per-edge data.
func buildBlogConnector() *fakeConnector {
	conn := newFakeConnector("blog")

	conn.addTable("authors", &fakeTable{
		columns: []datasource.ColumnMetadata{
			{Name: "id", DataType: "integer", OrdinalPosition: 1},
			{Name: "name", DataType: "varchar(100)", OrdinalPosition: 2},
		},
		pk: &datasource.PrimaryKeyMetadata{Name: "authors_pkey", Columns: []string{"id"}},
		rows: []map[string]any{
			{"id": 1, "name": "ann"},
			{"id": 2, "name": "bob"},
		},
	})

	conn.addTable("posts", &fakeTable{
		columns: []datasource.ColumnMetadata{
			{Name: "id", DataType: "integer", OrdinalPosition: 1},
			{Name: "title", DataType: "varchar(200)", OrdinalPosition: 2},
			{Name: "author_id", DataType: "integer", IsNullable: true, OrdinalPosition: 3},
		},
		pk: &datasource.PrimaryKeyMetadata{Name: "posts_pkey", Columns: []string{"id"}},
		fks: []datasource.ForeignKeyMetadata{
			{Name: "posts_author_id_fkey", Column: "author_id", ReferencedTable: "authors", ReferencedColumn: "id"},
		},
		rows: []map[string]any{
			{"id": 10, "title": "first", "author_id": 1},
			{"id": 11, "title": "second", "author_id": 2},
			{"id": 12, "title": "draft", "author_id": nil},
		},
	})

	conn.addTable("tags", &fakeTable{
		columns: []datasource.ColumnMetadata{
			{Name: "id", DataType: "integer", OrdinalPosition: 1},
			{Name: "label", DataType: "varchar(50)", OrdinalPosition: 2},
		},
		pk: &datasource.PrimaryKeyMetadata{Name: "tags_pkey", Columns: []string{"id"}},
		rows: []map[string]any{
			{"id": 100, "label": "go"},
			{"id": 101, "label": "graphs"},
		},
	})

	conn.addTable("post_tags", &fakeTable{
		columns: []datasource.ColumnMetadata{
			{Name: "post_id", DataType: "integer", OrdinalPosition: 1},
			{Name: "tag_id", DataType: "integer", OrdinalPosition: 2},
			{Name: "added_on", DataType: "date", IsNullable: true, OrdinalPosition: 3},
		},
		pk: &datasource.PrimaryKeyMetadata{Name: "post_tags_pkey", Columns: []string{"post_id", "tag_id"}},
		fks: []datasource.ForeignKeyMetadata{
			{Name: "post_tags_post_id_fkey", Column: "post_id", ReferencedTable: "posts", ReferencedColumn: "id"},
			{Name: "post_tags_tag_id_fkey", Column: "tag_id", ReferencedTable: "tags", ReferencedColumn: "id"},
		},
		rows: []map[string]any{
			{"post_id": 10, "tag_id": 100, "added_on": "2024-01-05"},
			{"post_id": 10, "tag_id": 101, "added_on": nil},
			{"post_id": 11, "tag_id": 100, "added_on": "2024-02-01"},
			{"post_id": 12, "tag_id": 101, "added_on": nil},
		},
	})

	return conn
}
