package models

import (
	"fmt"
	"strings"
)

// PropertyType is the data type of a graph property.
type PropertyType string

const (
	PropertyString   PropertyType = "STRING"
	PropertyInteger  PropertyType = "INTEGER"
	PropertyFloat    PropertyType = "FLOAT"
	PropertyBoolean  PropertyType = "BOOLEAN"
	PropertyDate     PropertyType = "DATE"
	PropertyDateTime PropertyType = "DATETIME"
	PropertyList     PropertyType = "LIST"
	PropertyMap      PropertyType = "MAP"
)

// PropertyTypeFromSQL maps a SQL type string to a graph property type.
// Matching is by substring on the lower-cased type, first match wins;
// unmatched types degrade to STRING.
func PropertyTypeFromSQL(sqlType string) PropertyType {
	t := strings.ToLower(sqlType)

	for _, s := range []string{"int", "serial"} {
		if strings.Contains(t, s) {
			return PropertyInteger
		}
	}
	for _, s := range []string{"float", "double", "real", "decimal", "numeric"} {
		if strings.Contains(t, s) {
			return PropertyFloat
		}
	}
	for _, s := range []string{"bool", "bit"} {
		if strings.Contains(t, s) {
			return PropertyBoolean
		}
	}
	if strings.Contains(t, "date") || strings.Contains(t, "time") {
		if strings.Contains(t, "date") && !strings.Contains(t, "time") {
			return PropertyDate
		}
		return PropertyDateTime
	}
	if strings.Contains(t, "json") {
		return PropertyMap
	}
	return PropertyString
}

// Property is a typed property on a node label or relationship type.
type Property struct {
	Name           string       `json:"name"`
	Type           PropertyType `json:"type"`
	IsRequired     bool         `json:"is_required"`
	IsIndexed      bool         `json:"is_indexed"`
	OriginalColumn string       `json:"original_column,omitempty"`
}

// ToMap renders the property as a plain map.
func (p *Property) ToMap() map[string]any {
	return map[string]any{
		"name":            p.Name,
		"type":            string(p.Type),
		"is_required":     p.IsRequired,
		"is_indexed":      p.IsIndexed,
		"original_column": p.OriginalColumn,
	}
}

// NodeLabel describes one node type in the target graph.
type NodeLabel struct {
	Name        string      `json:"name"`
	Properties  []*Property `json:"properties"`
	SourceTable string      `json:"source_table,omitempty"`
	PrimaryKey  string      `json:"primary_key,omitempty"`
	Indexes     []string    `json:"indexes,omitempty"`
}

// AddProperty appends a property to the label.
func (n *NodeLabel) AddProperty(p *Property) {
	n.Properties = append(n.Properties, p)
}

// GetProperty returns the property with the given name, or nil.
func (n *NodeLabel) GetProperty(name string) *Property {
	for _, p := range n.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddIndex records an indexed property name, deduplicating.
func (n *NodeLabel) AddIndex(propName string) {
	for _, existing := range n.Indexes {
		if existing == propName {
			return
		}
	}
	n.Indexes = append(n.Indexes, propName)
}

// ToMap renders the node label as a plain nested map.
func (n *NodeLabel) ToMap() map[string]any {
	props := make([]map[string]any, 0, len(n.Properties))
	for _, p := range n.Properties {
		props = append(props, p.ToMap())
	}
	return map[string]any{
		"name":         n.Name,
		"properties":   props,
		"source_table": n.SourceTable,
		"primary_key":  n.PrimaryKey,
		"indexes":      n.Indexes,
	}
}

// RelationshipType describes one edge type in the target graph.
type RelationshipType struct {
	Name       string      `json:"name"`
	FromLabel  string      `json:"from_label"`
	ToLabel    string      `json:"to_label"`
	Properties []*Property `json:"properties,omitempty"`

	// Provenance.
	SourceForeignKey    string `json:"source_foreign_key,omitempty"`
	SourceJunctionTable string `json:"source_junction_table,omitempty"`

	// Enriched metadata carried over from the conceptual model, when present.
	Cardinality string `json:"cardinality,omitempty"`
	Semantics   string `json:"semantics,omitempty"`
}

// AddProperty appends a property to the relationship type.
func (r *RelationshipType) AddProperty(p *Property) {
	r.Properties = append(r.Properties, p)
}

// ToMap renders the relationship type as a plain nested map.
func (r *RelationshipType) ToMap() map[string]any {
	props := make([]map[string]any, 0, len(r.Properties))
	for _, p := range r.Properties {
		props = append(props, p.ToMap())
	}
	return map[string]any{
		"name":                  r.Name,
		"from_label":            r.FromLabel,
		"to_label":              r.ToLabel,
		"properties":            props,
		"source_foreign_key":    r.SourceForeignKey,
		"source_junction_table": r.SourceJunctionTable,
		"cardinality":           r.Cardinality,
		"semantics":             r.Semantics,
	}
}

// GraphModel is the target property-graph schema, built once from a
// conceptual or relational model.
type GraphModel struct {
	Name             string `json:"name"`
	SourceSchemaName string `json:"source_schema_name,omitempty"`

	nodeLabels     map[string]*NodeLabel
	nodeLabelOrder []string

	// Relationship types keyed by "<from>_<name>_<to>"; duplicate keys
	// overwrite rather than duplicate.
	relationshipTypes map[string]*RelationshipType
	relTypeOrder      []string
}

// NewGraphModel creates an empty graph model.
func NewGraphModel(name, sourceSchemaName string) *GraphModel {
	return &GraphModel{
		Name:              name,
		SourceSchemaName:  sourceSchemaName,
		nodeLabels:        make(map[string]*NodeLabel),
		relationshipTypes: make(map[string]*RelationshipType),
	}
}

// AddNodeLabel registers a node label, replacing any previous label of the
// same name.
func (g *GraphModel) AddNodeLabel(label *NodeLabel) {
	if _, exists := g.nodeLabels[label.Name]; !exists {
		g.nodeLabelOrder = append(g.nodeLabelOrder, label.Name)
	}
	g.nodeLabels[label.Name] = label
}

// AddRelationshipType registers a relationship type under its
// (from, name, to) key.
func (g *GraphModel) AddRelationshipType(rt *RelationshipType) {
	key := fmt.Sprintf("%s_%s_%s", rt.FromLabel, rt.Name, rt.ToLabel)
	if _, exists := g.relationshipTypes[key]; !exists {
		g.relTypeOrder = append(g.relTypeOrder, key)
	}
	g.relationshipTypes[key] = rt
}

// GetNodeLabel returns the node label with the given name, or nil.
func (g *GraphModel) GetNodeLabel(name string) *NodeLabel {
	return g.nodeLabels[name]
}

// NodeLabels returns all node labels in insertion order.
func (g *GraphModel) NodeLabels() []*NodeLabel {
	out := make([]*NodeLabel, 0, len(g.nodeLabelOrder))
	for _, name := range g.nodeLabelOrder {
		out = append(out, g.nodeLabels[name])
	}
	return out
}

// RelationshipTypes returns all relationship types in insertion order.
func (g *GraphModel) RelationshipTypes() []*RelationshipType {
	out := make([]*RelationshipType, 0, len(g.relTypeOrder))
	for _, key := range g.relTypeOrder {
		out = append(out, g.relationshipTypes[key])
	}
	return out
}

// RelationshipsForLabel returns every relationship type that touches the
// given label on either end.
func (g *GraphModel) RelationshipsForLabel(label string) []*RelationshipType {
	var out []*RelationshipType
	for _, rt := range g.RelationshipTypes() {
		if rt.FromLabel == label || rt.ToLabel == label {
			out = append(out, rt)
		}
	}
	return out
}

// NodeLabelCount returns the number of node labels.
func (g *GraphModel) NodeLabelCount() int {
	return len(g.nodeLabels)
}

// RelationshipTypeCount returns the number of relationship types.
func (g *GraphModel) RelationshipTypeCount() int {
	return len(g.relationshipTypes)
}

// CypherSchema generates the Cypher statements that create uniqueness
// constraints and lookup indexes for the model.
func (g *GraphModel) CypherSchema() []string {
	var statements []string
	for _, label := range g.NodeLabels() {
		if label.PrimaryKey != "" {
			statements = append(statements, fmt.Sprintf(
				"CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
				label.Name, label.PrimaryKey, label.Name, label.PrimaryKey))
		}
	}
	for _, label := range g.NodeLabels() {
		for _, idx := range label.Indexes {
			statements = append(statements, fmt.Sprintf(
				"CREATE INDEX %s_%s_index IF NOT EXISTS FOR (n:%s) ON (n.%s)",
				label.Name, idx, label.Name, idx))
		}
	}
	return statements
}

// ToMap renders the model as a plain nested map.
func (g *GraphModel) ToMap() map[string]any {
	labels := make(map[string]any, len(g.nodeLabels))
	for name, label := range g.nodeLabels {
		labels[name] = label.ToMap()
	}
	rels := make(map[string]any, len(g.relationshipTypes))
	for key, rt := range g.relationshipTypes {
		rels[key] = rt.ToMap()
	}
	return map[string]any{
		"name":                    g.Name,
		"source_schema_name":      g.SourceSchemaName,
		"node_labels":             labels,
		"relationship_types":      rels,
		"node_label_count":        len(g.nodeLabels),
		"relationship_type_count": len(g.relationshipTypes),
	}
}
