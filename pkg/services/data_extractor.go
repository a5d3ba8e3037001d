package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/adapters/datasource"
	"github.com/graphshift/graphshift/pkg/models"
)

// BatchFunc consumes one extracted batch. Returning an error stops the
// extraction of the current table.
type BatchFunc func(batch []map[string]any) error

// DataExtractor streams table rows out of the source database in batches.
type DataExtractor interface {
	// ExtractTable reads all rows of a table batch by batch, invoking fn
	// for each batch in order.
	ExtractTable(ctx context.Context, table *models.Table, fn BatchFunc) error

	// ExtractBatch reads a single batch starting at offset.
	ExtractBatch(ctx context.Context, table, schema string, offset int) ([]map[string]any, error)
}

type dataExtractor struct {
	conn      datasource.Connector
	batchSize int
	logger    *zap.Logger
}

var _ DataExtractor = (*dataExtractor)(nil)

// NewDataExtractor creates an extractor reading batchSize rows at a time.
func NewDataExtractor(conn datasource.Connector, batchSize int, logger *zap.Logger) DataExtractor {
	return &dataExtractor{
		conn:      conn,
		batchSize: batchSize,
		logger:    logger.Named("data-extractor"),
	}
}

func (e *dataExtractor) ExtractTable(ctx context.Context, table *models.Table, fn BatchFunc) error {
	if table.RowCount == 0 {
		e.logger.Info("table is empty, skipping", zap.String("table", table.Name))
		return nil
	}

	e.logger.Info("extracting table",
		zap.String("table", table.Name),
		zap.Int64("rows", table.RowCount))

	offset := 0
	for int64(offset) < table.RowCount {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := e.conn.FetchRows(ctx, table.Name, table.Schema, e.batchSize, offset)
		if err != nil {
			return fmt.Errorf("extract %s at offset %d: %w", table.Name, offset, err)
		}
		if len(batch) == 0 {
			break
		}

		if err := fn(batch); err != nil {
			return fmt.Errorf("process batch of %s at offset %d: %w", table.Name, offset, err)
		}
		offset += e.batchSize
	}

	e.logger.Info("extraction complete", zap.String("table", table.Name))
	return nil
}

func (e *dataExtractor) ExtractBatch(ctx context.Context, table, schema string, offset int) ([]map[string]any, error) {
	return e.conn.FetchRows(ctx, table, schema, e.batchSize, offset)
}
