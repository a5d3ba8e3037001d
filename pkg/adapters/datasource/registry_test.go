package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/apperrors"
	"github.com/graphshift/graphshift/pkg/config"
)

func TestRegisterAndOpen(t *testing.T) {
	var gotCfg config.SourceConfig
	Register("fakedb", func(_ context.Context, cfg config.SourceConfig, _ *zap.Logger) (Connector, error) {
		gotCfg = cfg
		return nil, nil
	})

	assert.True(t, IsRegistered("fakedb"))
	assert.Contains(t, RegisteredTypes(), "fakedb")

	cfg := config.SourceConfig{Type: "fakedb", Database: "demo"}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "demo", gotCfg.Database)
}

func TestOpenNormalizesPostgresAlias(t *testing.T) {
	var called bool
	Register("postgres", func(context.Context, config.SourceConfig, *zap.Logger) (Connector, error) {
		called = true
		return nil, nil
	})

	assert.True(t, IsRegistered("postgresql"))

	_, err := Open(context.Background(), config.SourceConfig{Type: "postgresql"}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), config.SourceConfig{Type: "dbase3"}, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDB)
	assert.Contains(t, err.Error(), "dbase3")
}
