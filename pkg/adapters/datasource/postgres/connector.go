// Package postgres implements the datasource.Connector contract for
// PostgreSQL using pgx connection pools.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/config"
	"github.com/graphshift/graphshift/pkg/logging"
)

// DefaultSchema is used when the source config does not name a schema.
const DefaultSchema = "public"

type connector struct {
	pool     *pgxpool.Pool
	database string
	schema   string
	logger   *zap.Logger
}

var _ datasource.Connector = (*connector)(nil)

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// User-provided fields are URL-escaped so passwords containing @, /, #
// or ? don't break URL parsing.
func buildConnectionString(cfg config.SourceConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
	)
}

// NewConnector opens a pooled PostgreSQL connection for the given source.
func NewConnector(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (datasource.Connector, error) {
	connStr := buildConnectionString(cfg)
	logger.Debug("connecting to postgres",
		zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = DefaultSchema
	}

	return &connector{
		pool:     pool,
		database: cfg.Database,
		schema:   schema,
		logger:   logger.Named("postgres"),
	}, nil
}

func (c *connector) TestConnection(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var currentDB string
	if err := c.pool.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return fmt.Errorf("get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, c.database) {
		return fmt.Errorf("connected to database %q, expected %q", currentDB, c.database)
	}
	return nil
}

func (c *connector) DatabaseName() string { return c.database }

func (c *connector) Type() string { return "postgres" }

func (c *connector) resolveSchema(schema string) string {
	if schema == "" {
		return c.schema
	}
	return schema
}

func (c *connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := c.pool.Query(ctx, query, c.resolveSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (c *connector) GetColumns(ctx context.Context, table, schema string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale,
		       column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := c.pool.Query(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var (
			col        datasource.ColumnMetadata
			isNullable string
			maxLen     *int64
			precision  *int64
			scale      *int64
			defVal     *string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &maxLen, &precision, &scale, &defVal, &col.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		col.IsNullable = strings.EqualFold(isNullable, "YES")
		col.MaxLength = maxLen
		col.Precision = precision
		col.Scale = scale
		col.DefaultValue = defVal
		// Serial columns surface as a nextval() default rather than a
		// dedicated identity flag.
		col.IsAutoIncrement = defVal != nil && strings.HasPrefix(*defVal, "nextval(")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return columns, nil
}

func (c *connector) GetPrimaryKey(ctx context.Context, table, schema string) (*datasource.PrimaryKeyMetadata, error) {
	const query = `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1
		  AND tc.table_name = $2
		  AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`

	rows, err := c.pool.Query(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk *datasource.PrimaryKeyMetadata
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, fmt.Errorf("scan primary key of %s: %w", table, err)
		}
		if pk == nil {
			pk = &datasource.PrimaryKeyMetadata{Name: name}
		}
		pk.Columns = append(pk.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate primary key of %s: %w", table, err)
	}
	return pk, nil
}

func (c *connector) GetForeignKeys(ctx context.Context, table, schema string) ([]datasource.ForeignKeyMetadata, error) {
	const query = `
		SELECT tc.constraint_name, kcu.column_name,
		       ccu.table_name AS referenced_table,
		       ccu.column_name AS referenced_column,
		       rc.update_rule, rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		JOIN information_schema.referential_constraints rc
		  ON tc.constraint_name = rc.constraint_name
		 AND tc.table_schema = rc.constraint_schema
		WHERE tc.table_schema = $1
		  AND tc.table_name = $2
		  AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.constraint_name, kcu.ordinal_position`

	rows, err := c.pool.Query(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var fk datasource.ForeignKeyMetadata
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", table, err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys of %s: %w", table, err)
	}
	return fks, nil
}

func (c *connector) GetIndexes(ctx context.Context, table, schema string) ([]datasource.IndexMetadata, error) {
	const query = `
		SELECT i.relname AS index_name, a.attname AS column_name, ix.indisunique
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relname = $1
		  AND n.nspname = $2
		  AND NOT ix.indisprimary
		ORDER BY i.relname, array_position(ix.indkey, a.attnum)`

	rows, err := c.pool.Query(ctx, query, table, c.resolveSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var indexRows []datasource.IndexColumnRow
	for rows.Next() {
		var row datasource.IndexColumnRow
		if err := rows.Scan(&row.IndexName, &row.ColumnName, &row.IsUnique); err != nil {
			return nil, fmt.Errorf("scan index of %s: %w", table, err)
		}
		indexRows = append(indexRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes of %s: %w", table, err)
	}
	return datasource.GroupIndexColumns(indexRows), nil
}

func (c *connector) GetRowCount(ctx context.Context, table, schema string) (int64, error) {
	ident := pgx.Identifier{c.resolveSchema(schema), table}.Sanitize()

	var count int64
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+ident).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return count, nil
}

func (c *connector) FetchRows(ctx context.Context, table, schema string, limit, offset int) ([]map[string]any, error) {
	ident := pgx.Identifier{c.resolveSchema(schema), table}.Sanitize()

	rows, err := c.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT $1 OFFSET $2", ident), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch rows of %s: %w", table, err)
	}
	defer rows.Close()

	out, err := pgxRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("fetch rows of %s: %w", table, err)
	}
	return out, nil
}

func pgxRowsToMaps(rows pgx.Rows) ([]map[string]any, error) {
	fields := rows.FieldDescriptions()

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[fd.Name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func (c *connector) Close() error {
	c.pool.Close()
	return nil
}
