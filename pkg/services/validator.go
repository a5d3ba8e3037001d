package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/graphshift/graphshift/pkg/loaders"
	"github.com/graphshift/graphshift/pkg/models"
	"github.com/graphshift/graphshift/pkg/naming"
)

// RowCountComparison compares one table's source row count with the
// number of migrated nodes under its label.
type RowCountComparison struct {
	Table  string
	Label  string
	Source int64
	Target int64
}

// Match reports whether source and target counts agree.
func (c RowCountComparison) Match() bool { return c.Source == c.Target }

// ValidationResult collects the outcome of a validation pass.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string

	RowCounts          []RowCountComparison
	RelationshipCounts map[string]int64

	TotalNodes         int64
	TotalRelationships int64
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// DataValidator checks a migration before and after data loading.
type DataValidator interface {
	// ValidatePreMigration checks the source schema is migratable:
	// referenced tables exist and entity tables carry primary keys.
	ValidatePreMigration(schema *models.DatabaseSchema) *ValidationResult

	// ValidatePostMigration compares source row counts against migrated
	// node counts and collects target totals.
	ValidatePostMigration(ctx context.Context, schema *models.DatabaseSchema, graph *models.GraphModel) (*ValidationResult, error)

	// ValidateRelationships counts instances of every relationship type,
	// warning on types with no instances.
	ValidateRelationships(ctx context.Context, graph *models.GraphModel) (*ValidationResult, error)
}

type dataValidator struct {
	loader loaders.GraphLoader
	logger *zap.Logger
}

var _ DataValidator = (*dataValidator)(nil)

// NewDataValidator creates a validator over an open graph loader.
func NewDataValidator(loader loaders.GraphLoader, logger *zap.Logger) DataValidator {
	return &dataValidator{
		loader: loader,
		logger: logger.Named("data-validator"),
	}
}

func (v *dataValidator) ValidatePreMigration(schema *models.DatabaseSchema) *ValidationResult {
	v.logger.Info("running pre-migration validation")
	result := &ValidationResult{Valid: true}

	var withoutPK []string
	for _, table := range schema.EntityTables() {
		if table.PrimaryKey == nil {
			withoutPK = append(withoutPK, table.Name)
		}
	}
	if len(withoutPK) > 0 {
		result.addWarning("tables without primary key: %s", strings.Join(withoutPK, ", "))
	}

	for _, table := range schema.Tables() {
		for _, fk := range table.ForeignKeys {
			if schema.GetTable(fk.ReferencedTable) == nil {
				result.addError("foreign key %s in table %s references missing table %s",
					fk.Name, table.Name, fk.ReferencedTable)
			}
		}
	}

	return result
}

func (v *dataValidator) ValidatePostMigration(ctx context.Context, schema *models.DatabaseSchema, graph *models.GraphModel) (*ValidationResult, error) {
	v.logger.Info("running post-migration validation")
	result := &ValidationResult{Valid: true}

	mismatches := 0
	for _, table := range schema.EntityTables() {
		label := naming.Label(table.Name)

		target, err := v.loader.NodeCount(ctx, label)
		if err != nil {
			result.addError("count nodes of label %s: %v", label, err)
			continue
		}

		cmp := RowCountComparison{
			Table:  table.Name,
			Label:  label,
			Source: table.RowCount,
			Target: target,
		}
		result.RowCounts = append(result.RowCounts, cmp)
		if !cmp.Match() {
			mismatches++
		}
	}
	if mismatches > 0 {
		result.addError("row count mismatches in %d tables", mismatches)
	}

	totalNodes, err := v.loader.NodeCount(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count total nodes: %w", err)
	}
	totalRels, err := v.loader.RelationshipCount(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count total relationships: %w", err)
	}
	result.TotalNodes = totalNodes
	result.TotalRelationships = totalRels

	v.logger.Info("post-migration validation complete",
		zap.Bool("valid", result.Valid),
		zap.Int64("nodes", totalNodes),
		zap.Int64("relationships", totalRels))

	return result, nil
}

func (v *dataValidator) ValidateRelationships(ctx context.Context, graph *models.GraphModel) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:              true,
		RelationshipCounts: make(map[string]int64),
	}

	for _, rt := range graph.RelationshipTypes() {
		count, err := v.loader.RelationshipCount(ctx, rt.Name)
		if err != nil {
			result.addError("count relationships of type %s: %v", rt.Name, err)
			continue
		}
		result.RelationshipCounts[rt.Name] = count
		if count == 0 {
			result.addWarning("relationship type %s has no instances", rt.Name)
		}
	}

	return result, nil
}
