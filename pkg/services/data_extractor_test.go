package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/models"
)

func TestExtractTableBatches(t *testing.T) {
	conn := buildBlogConnector()
	extractor := NewDataExtractor(conn, 2, zap.NewNop())

	table := &models.Table{Name: "posts", RowCount: 3}

	var sizes []int
	err := extractor.ExtractTable(context.Background(), table, func(batch []map[string]any) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, sizes)
}

func TestExtractTableEmpty(t *testing.T) {
	conn := buildBlogConnector()
	extractor := NewDataExtractor(conn, 2, zap.NewNop())

	called := false
	err := extractor.ExtractTable(context.Background(), &models.Table{Name: "posts"}, func([]map[string]any) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "empty tables are skipped without fetching")
	assert.Zero(t, conn.fetchCalls)
}

func TestExtractTableCallbackError(t *testing.T) {
	conn := buildBlogConnector()
	extractor := NewDataExtractor(conn, 10, zap.NewNop())

	boom := errors.New("boom")
	err := extractor.ExtractTable(context.Background(), &models.Table{Name: "authors", RowCount: 2}, func([]map[string]any) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestExtractTableCanceledContext(t *testing.T) {
	conn := buildBlogConnector()
	extractor := NewDataExtractor(conn, 2, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := extractor.ExtractTable(ctx, &models.Table{Name: "posts", RowCount: 3}, func([]map[string]any) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, conn.fetchCalls)
}

func TestExtractBatch(t *testing.T) {
	conn := buildBlogConnector()
	extractor := NewDataExtractor(conn, 2, zap.NewNop())

	batch, err := extractor.ExtractBatch(context.Background(), "tags", "", 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "graphs", batch[0]["label"])
}
