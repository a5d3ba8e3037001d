package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/apperrors"
	"github.com/graphshift/graphshift/pkg/config"
)

// ConnectorFactory builds a Connector for one database type.
type ConnectorFactory func(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (Connector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ConnectorFactory)
)

// Register is called by each driver package's init() function.
// Thread-safe for concurrent init() calls.
func Register(dbType string, factory ConnectorFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[dbType] = factory
}

// RegisteredTypes returns the database types with a registered driver, sorted.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsRegistered checks if a driver is available for a database type.
func IsRegistered(dbType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[normalizeType(dbType)]
	return ok
}

// Open builds a Connector for the configured source database type.
func Open(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (Connector, error) {
	dbType := normalizeType(cfg.Type)

	registryMu.RLock()
	factory, ok := registry[dbType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("database type %q: %w", cfg.Type, apperrors.ErrUnsupportedDB)
	}
	return factory(ctx, cfg, logger)
}

func normalizeType(dbType string) string {
	if dbType == "postgresql" {
		return "postgres"
	}
	return dbType
}
