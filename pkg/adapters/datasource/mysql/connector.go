// Package mysql implements the datasource.Connector contract for MySQL
// and MariaDB over database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/config"
)

type connector struct {
	db       *sql.DB
	database string
	logger   *zap.Logger
}

var _ datasource.Connector = (*connector)(nil)

// NewConnector opens a MySQL connection for the given source.
func NewConnector(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (datasource.Connector, error) {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true

	logger.Debug("connecting to mysql",
		zap.String("addr", mc.Addr),
		zap.String("database", cfg.Database))

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("connect to mysql: %w", err)
	}

	return &connector{
		db:       db,
		database: cfg.Database,
		logger:   logger.Named("mysql"),
	}, nil
}

func (c *connector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var currentDB string
	if err := c.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&currentDB); err != nil {
		return fmt.Errorf("get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, c.database) {
		return fmt.Errorf("connected to database %q, expected %q", currentDB, c.database)
	}
	return nil
}

func (c *connector) DatabaseName() string { return c.database }

func (c *connector) Type() string { return "mysql" }

// MySQL has no separate schema layer, the database is the schema.
func (c *connector) resolveSchema(schema string) string {
	if schema == "" {
		return c.database
	}
	return schema
}

// quoteIdent backtick-quotes a MySQL identifier.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (c *connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
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
		       COLUMN_DEFAULT, EXTRA, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
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
			extra      string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &maxLen, &precision, &scale, &defVal, &extra, &col.OrdinalPosition); err != nil {
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
		col.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return columns, nil
}

func (c *connector) GetPrimaryKey(ctx context.Context, table, schema string) (*datasource.PrimaryKeyMetadata, error) {
	const query = `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk *datasource.PrimaryKeyMetadata
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scan primary key of %s: %w", table, err)
		}
		if pk == nil {
			pk = &datasource.PrimaryKeyMetadata{Name: "PRIMARY"}
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
		SELECT kcu.CONSTRAINT_NAME, kcu.COLUMN_NAME,
		       kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME,
		       rc.UPDATE_RULE, rc.DELETE_RULE
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		  ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
		 AND kcu.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA
		WHERE kcu.TABLE_SCHEMA = ?
		  AND kcu.TABLE_NAME = ?
		  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`

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
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys of %s: %w", table, err)
	}
	return fks, nil
}

func (c *connector) GetIndexes(ctx context.Context, table, schema string) ([]datasource.IndexMetadata, error) {
	const query = `
		SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND INDEX_NAME != 'PRIMARY'
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	rows, err := c.db.QueryContext(ctx, query, c.resolveSchema(schema), table)
	if err != nil {
		return nil, fmt.Errorf("indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var indexRows []datasource.IndexColumnRow
	for rows.Next() {
		var (
			row       datasource.IndexColumnRow
			nonUnique int
		)
		if err := rows.Scan(&row.IndexName, &row.ColumnName, &nonUnique); err != nil {
			return nil, fmt.Errorf("scan index of %s: %w", table, err)
		}
		row.IsUnique = nonUnique == 0
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
	query := fmt.Sprintf("SELECT * FROM %s LIMIT ? OFFSET ?", c.qualified(table, schema))

	rows, err := c.db.QueryContext(ctx, query, limit, offset)
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
