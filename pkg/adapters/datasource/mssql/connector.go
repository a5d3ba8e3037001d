// Package mssql implements the datasource.Connector contract for
// SQL Server over database/sql using the go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/config"
	"github.com/graphshift/graphshift/pkg/logging"
)

// DefaultSchema is used when the source config does not name a schema.
const DefaultSchema = "dbo"

type connector struct {
	db       *sql.DB
	database string
	schema   string
	logger   *zap.Logger
}

var _ datasource.Connector = (*connector)(nil)

func buildConnectionString(cfg config.SourceConfig) string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	if cfg.SSLMode == "disable" {
		q.Set("encrypt", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// NewConnector opens a SQL Server connection for the given source.
func NewConnector(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (datasource.Connector, error) {
	connStr := buildConnectionString(cfg)
	logger.Debug("connecting to sqlserver",
		zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlserver: %w", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = DefaultSchema
	}

	return &connector{
		db:       db,
		database: cfg.Database,
		schema:   schema,
		logger:   logger.Named("mssql"),
	}, nil
}

func (c *connector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var currentDB string
	if err := c.db.QueryRowContext(ctx, "SELECT DB_NAME()").Scan(&currentDB); err != nil {
		return fmt.Errorf("get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, c.database) {
		return fmt.Errorf("connected to database %q, expected %q", currentDB, c.database)
	}
	return nil
}

func (c *connector) DatabaseName() string { return c.database }

func (c *connector) Type() string { return "sqlserver" }

func (c *connector) resolveSchema(schema string) string {
	if schema == "" {
		return c.schema
	}
	return schema
}

// quoteIdent bracket-quotes a SQL Server identifier.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (c *connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema))
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
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE,
		       CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE,
		       COLUMN_DEFAULT, ORDINAL_POSITION,
		       COLUMNPROPERTY(OBJECT_ID(TABLE_SCHEMA + '.' + TABLE_NAME), COLUMN_NAME, 'IsIdentity') AS is_identity
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var (
			col        datasource.ColumnMetadata
			isNullable string
			maxLen     sql.NullInt64
			precision  sql.NullInt64
			scale      sql.NullInt64
			defVal     sql.NullString
			isIdentity sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &maxLen, &precision, &scale, &defVal, &col.OrdinalPosition, &isIdentity); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		col.IsNullable = strings.EqualFold(isNullable, "YES")
		if maxLen.Valid {
			col.MaxLength = &maxLen.Int64
		}
		if precision.Valid {
			col.Precision = &precision.Int64
		}
		if scale.Valid {
			col.Scale = &scale.Int64
		}
		if defVal.Valid {
			col.DefaultValue = &defVal.String
		}
		col.IsAutoIncrement = isIdentity.Valid && isIdentity.Int64 == 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return columns, nil
}

func (c *connector) GetPrimaryKey(ctx context.Context, table, schema string) (*datasource.PrimaryKeyMetadata, error) {
	const query = `
		SELECT tc.CONSTRAINT_NAME, kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		  ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		 AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
		WHERE tc.TABLE_SCHEMA = @p1
		  AND tc.TABLE_NAME = @p2
		  AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		ORDER BY kcu.ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
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
		SELECT fk.name AS constraint_name,
		       pc.name AS column_name,
		       rt.name AS referenced_table,
		       rc.name AS referenced_column,
		       fk.update_referential_action_desc,
		       fk.delete_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables pt ON fkc.parent_object_id = pt.object_id
		JOIN sys.schemas ps ON pt.schema_id = ps.schema_id
		JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id
		JOIN sys.tables rt ON fkc.referenced_object_id = rt.object_id
		JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
		WHERE ps.name = @p1 AND pt.name = @p2
		ORDER BY fk.name, fkc.constraint_column_id`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
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
		// Action descriptions read NO_ACTION, CASCADE, SET_NULL, SET_DEFAULT.
		fk.OnUpdate = strings.ReplaceAll(fk.OnUpdate, "_", " ")
		fk.OnDelete = strings.ReplaceAll(fk.OnDelete, "_", " ")
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys of %s: %w", table, err)
	}
	return fks, nil
}

func (c *connector) GetIndexes(ctx context.Context, table, schema string) ([]datasource.IndexMetadata, error) {
	const query = `
		SELECT i.name AS index_name, col.name AS column_name, i.is_unique
		FROM sys.indexes i
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns col ON ic.object_id = col.object_id AND ic.column_id = col.column_id
		JOIN sys.tables t ON i.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		WHERE s.name = @p1 AND t.name = @p2 AND i.is_primary_key = 0 AND i.name IS NOT NULL
		ORDER BY i.name, ic.key_ordinal`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
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

func (c *connector) qualified(table, schema string) string {
	return quoteIdent(c.resolveSchema(schema)) + "." + quoteIdent(table)
}

func (c *connector) GetRowCount(ctx context.Context, table, schema string) (int64, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.qualified(table, schema)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return count, nil
}

func (c *connector) FetchRows(ctx context.Context, table, schema string, limit, offset int) ([]map[string]any, error) {
	query := fmt.Sprintf(
		"SELECT * FROM %s ORDER BY (SELECT NULL) OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
		c.qualified(table, schema),
	)

	rows, err := c.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch rows of %s: %w", table, err)
	}
	defer rows.Close()

	out, err := datasource.ScanRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("fetch rows of %s: %w", table, err)
	}
	return out, nil
}

func (c *connector) Close() error {
	return c.db.Close()
}
