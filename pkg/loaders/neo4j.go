// Package loaders writes migrated nodes and relationships into the target
// graph database.
package loaders

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/config"
	"github.com/graphshift/graphshift/pkg/models"
)

// RelationshipRecord is one relationship instance to load: the key values
// of both endpoint nodes plus the edge's own properties.
type RelationshipRecord struct {
	FromID     any
	ToID       any
	Properties map[string]any
}

// GraphLoader loads a graph model and its data into a graph database.
type GraphLoader interface {
	VerifyConnectivity(ctx context.Context) error

	// CreateSchema creates uniqueness constraints and indexes for the
	// model. Individual statement failures are logged, not fatal.
	CreateSchema(ctx context.Context, model *models.GraphModel) error

	// ClearDatabase detaches and deletes every node in the database.
	ClearDatabase(ctx context.Context) error

	// LoadNodes creates one node per property map under the given label.
	LoadNodes(ctx context.Context, label string, nodes []map[string]any) (int64, error)

	// LoadRelationships creates edges of the given type, matching endpoint
	// nodes by the id properties named on the call.
	LoadRelationships(ctx context.Context, rt *models.RelationshipType, records []RelationshipRecord, fromIDProp, toIDProp string) (int64, error)

	// NodeCount counts nodes, optionally filtered by label ("" for all).
	NodeCount(ctx context.Context, label string) (int64, error)

	// RelationshipCount counts relationships, optionally filtered by type.
	RelationshipCount(ctx context.Context, relType string) (int64, error)

	Close(ctx context.Context) error
}

type neo4jLoader struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

var _ GraphLoader = (*neo4jLoader)(nil)

// NewNeo4jLoader opens a Neo4j driver for the configured target.
func NewNeo4jLoader(cfg config.TargetConfig, logger *zap.Logger) (GraphLoader, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &neo4jLoader{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.Named("neo4j-loader"),
	}, nil
}

func (l *neo4jLoader) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, l.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(l.database))
}

func (l *neo4jLoader) VerifyConnectivity(ctx context.Context) error {
	if err := l.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return nil
}

func (l *neo4jLoader) CreateSchema(ctx context.Context, model *models.GraphModel) error {
	statements := model.CypherSchema()
	l.logger.Info("creating constraints and indexes", zap.Int("statements", len(statements)))

	for _, stmt := range statements {
		if _, err := l.run(ctx, stmt, nil); err != nil {
			l.logger.Warn("schema statement failed",
				zap.String("statement", stmt),
				zap.Error(err))
		}
	}
	return nil
}

func (l *neo4jLoader) ClearDatabase(ctx context.Context) error {
	l.logger.Warn("clearing target database")
	if _, err := l.run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("clear database: %w", err)
	}
	return nil
}

func (l *neo4jLoader) LoadNodes(ctx context.Context, label string, nodes []map[string]any) (int64, error) {
	if len(nodes) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("UNWIND $nodes AS node CREATE (n:%s) SET n = node", label)

	batch := make([]any, 0, len(nodes))
	for _, node := range nodes {
		batch = append(batch, node)
	}

	result, err := l.run(ctx, query, map[string]any{"nodes": batch})
	if err != nil {
		return 0, fmt.Errorf("load nodes for label %s: %w", label, err)
	}

	created := int64(result.Summary.Counters().NodesCreated())
	l.logger.Debug("loaded nodes", zap.String("label", label), zap.Int64("created", created))
	return created, nil
}

func (l *neo4jLoader) LoadRelationships(ctx context.Context, rt *models.RelationshipType, records []RelationshipRecord, fromIDProp, toIDProp string) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`UNWIND $rels AS rel
MATCH (from:%s {%s: rel.from_id})
MATCH (to:%s {%s: rel.to_id})
CREATE (from)-[r:%s]->(to)
SET r = rel.properties`,
		rt.FromLabel, fromIDProp, rt.ToLabel, toIDProp, rt.Name)

	batch := make([]any, 0, len(records))
	for _, rec := range records {
		props := rec.Properties
		if props == nil {
			props = map[string]any{}
		}
		batch = append(batch, map[string]any{
			"from_id":    rec.FromID,
			"to_id":      rec.ToID,
			"properties": props,
		})
	}

	result, err := l.run(ctx, query, map[string]any{"rels": batch})
	if err != nil {
		return 0, fmt.Errorf("load relationships of type %s: %w", rt.Name, err)
	}

	created := int64(result.Summary.Counters().RelationshipsCreated())
	l.logger.Debug("loaded relationships", zap.String("type", rt.Name), zap.Int64("created", created))
	return created, nil
}

func (l *neo4jLoader) NodeCount(ctx context.Context, label string) (int64, error) {
	query := "MATCH (n) RETURN count(n) AS count"
	if label != "" {
		query = fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label)
	}
	return l.count(ctx, query)
}

func (l *neo4jLoader) RelationshipCount(ctx context.Context, relType string) (int64, error) {
	query := "MATCH ()-[r]->() RETURN count(r) AS count"
	if relType != "" {
		query = fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", relType)
	}
	return l.count(ctx, query)
}

func (l *neo4jLoader) count(ctx context.Context, query string) (int64, error) {
	result, err := l.run(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	if len(result.Records) == 0 {
		return 0, fmt.Errorf("count query returned no records")
	}
	value, _, err := neo4j.GetRecordValue[int64](result.Records[0], "count")
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	return value, nil
}

func (l *neo4jLoader) Close(ctx context.Context) error {
	return l.driver.Close(ctx)
}
