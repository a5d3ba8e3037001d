package models

// EntityType classifies conceptual entities.
type EntityType string

const (
	EntityTypeStrong      EntityType = "STRONG"
	EntityTypeWeak        EntityType = "WEAK"
	EntityTypeAssociative EntityType = "ASSOCIATIVE"
)

// RelationshipCardinality is the enriched cardinality of a conceptual relationship.
type RelationshipCardinality string

const (
	OneToOne   RelationshipCardinality = "1:1"
	OneToMany  RelationshipCardinality = "1:N"
	ManyToOne  RelationshipCardinality = "N:1"
	ManyToMany RelationshipCardinality = "N:M"
)

// ParseCardinality converts a cardinality string annotation to the enum.
// Unknown values default to many-to-one, the safe reading of a plain FK.
func ParseCardinality(s string) RelationshipCardinality {
	switch s {
	case Cardinality1To1:
		return OneToOne
	case Cardinality1ToN:
		return OneToMany
	case CardinalityNTo1:
		return ManyToOne
	case CardinalityNToM:
		return ManyToMany
	default:
		return ManyToOne
	}
}

// RelationshipSemantics classifies what a relationship means.
type RelationshipSemantics string

const (
	SemanticsAssociation RelationshipSemantics = "ASSOCIATION"
	SemanticsInheritance RelationshipSemantics = "INHERITANCE"
	SemanticsAggregation RelationshipSemantics = "AGGREGATION"
	SemanticsComposition RelationshipSemantics = "COMPOSITION"
)

// ConceptualEntity is an entity in the conceptual model, enriched from a
// source table with semantic classification.
type ConceptualEntity struct {
	Name          string     `json:"name"`
	EntityType    EntityType `json:"entity_type"`
	SourceTable   string     `json:"source_table"`
	Attributes    []string   `json:"attributes"`
	KeyAttributes []string   `json:"key_attributes"`
	Superclass    string     `json:"superclass,omitempty"`
	Subclasses    []string   `json:"subclasses,omitempty"`
	OwnerEntity   string     `json:"owner_entity,omitempty"`
	Discriminator string     `json:"discriminator,omitempty"`
}

// ToMap renders the entity as a plain nested map.
func (e *ConceptualEntity) ToMap() map[string]any {
	return map[string]any{
		"name":           e.Name,
		"entity_type":    string(e.EntityType),
		"source_table":   e.SourceTable,
		"attributes":     e.Attributes,
		"key_attributes": e.KeyAttributes,
		"superclass":     e.Superclass,
		"subclasses":     e.Subclasses,
		"owner_entity":   e.OwnerEntity,
		"discriminator":  e.Discriminator,
	}
}

// ConceptualRelationship is a semantically typed relationship between two
// conceptual entities.
type ConceptualRelationship struct {
	Name         string                  `json:"name"`
	SourceEntity string                  `json:"source_entity"`
	TargetEntity string                  `json:"target_entity"`
	Cardinality  RelationshipCardinality `json:"cardinality"`
	Semantics    RelationshipSemantics   `json:"semantics"`

	// Provenance: the FK the relationship came from, or the junction table
	// for synthesized N:M relationships.
	SourceForeignKey    string `json:"source_foreign_key,omitempty"`
	SourceJunctionTable string `json:"source_junction_table,omitempty"`

	Attributes        []string `json:"attributes,omitempty"`
	IsMandatorySource bool     `json:"is_mandatory_source"`
	IsMandatoryTarget bool     `json:"is_mandatory_target"`
}

// ToMap renders the relationship as a plain nested map.
func (r *ConceptualRelationship) ToMap() map[string]any {
	return map[string]any{
		"name":                  r.Name,
		"source_entity":         r.SourceEntity,
		"target_entity":         r.TargetEntity,
		"cardinality":           string(r.Cardinality),
		"semantics":             string(r.Semantics),
		"source_foreign_key":    r.SourceForeignKey,
		"source_junction_table": r.SourceJunctionTable,
		"attributes":            r.Attributes,
		"is_mandatory_source":   r.IsMandatorySource,
		"is_mandatory_target":   r.IsMandatoryTarget,
	}
}

// ConceptualModel is the intermediate, semantically enriched model between
// the relational schema and the graph model. It is built once by the
// enricher and read-only afterwards.
type ConceptualModel struct {
	Name             string `json:"name"`
	SourceSchemaName string `json:"source_schema_name"`

	entities    map[string]*ConceptualEntity
	entityOrder []string

	// Relationships in discovery order.
	Relationships []*ConceptualRelationship `json:"relationships"`

	// InheritanceHierarchies holds chains [superclass, subclass, ...];
	// newly found subclasses append to the chain containing their superclass.
	InheritanceHierarchies [][]string `json:"inheritance_hierarchies"`

	// WeakEntityGroups maps an owner entity name to its dependents.
	WeakEntityGroups map[string][]string `json:"weak_entity_groups"`
}

// NewConceptualModel creates an empty conceptual model.
func NewConceptualModel(name, sourceSchemaName string) *ConceptualModel {
	return &ConceptualModel{
		Name:             name,
		SourceSchemaName: sourceSchemaName,
		entities:         make(map[string]*ConceptualEntity),
		WeakEntityGroups: make(map[string][]string),
	}
}

// AddEntity registers an entity. Entity names are unique within a model;
// re-adding a name replaces the entity.
func (m *ConceptualModel) AddEntity(entity *ConceptualEntity) {
	if _, exists := m.entities[entity.Name]; !exists {
		m.entityOrder = append(m.entityOrder, entity.Name)
	}
	m.entities[entity.Name] = entity
}

// AddRelationship appends a relationship in discovery order.
func (m *ConceptualModel) AddRelationship(rel *ConceptualRelationship) {
	m.Relationships = append(m.Relationships, rel)
}

// GetEntity returns the entity with the given name, or nil.
func (m *ConceptualModel) GetEntity(name string) *ConceptualEntity {
	return m.entities[name]
}

// Entities returns all entities in insertion order.
func (m *ConceptualModel) Entities() []*ConceptualEntity {
	out := make([]*ConceptualEntity, 0, len(m.entityOrder))
	for _, name := range m.entityOrder {
		out = append(out, m.entities[name])
	}
	return out
}

// EntityCount returns the number of entities.
func (m *ConceptualModel) EntityCount() int {
	return len(m.entities)
}

// StrongEntities returns all independent entities.
func (m *ConceptualModel) StrongEntities() []*ConceptualEntity {
	var out []*ConceptualEntity
	for _, e := range m.Entities() {
		if e.EntityType == EntityTypeStrong {
			out = append(out, e)
		}
	}
	return out
}

// WeakEntities returns all owner-dependent entities.
func (m *ConceptualModel) WeakEntities() []*ConceptualEntity {
	var out []*ConceptualEntity
	for _, e := range m.Entities() {
		if e.EntityType == EntityTypeWeak {
			out = append(out, e)
		}
	}
	return out
}

// InheritanceRelationships returns all IS-A relationships.
func (m *ConceptualModel) InheritanceRelationships() []*ConceptualRelationship {
	var out []*ConceptualRelationship
	for _, r := range m.Relationships {
		if r.Semantics == SemanticsInheritance {
			out = append(out, r)
		}
	}
	return out
}

// OwnershipRelationships returns all aggregation and composition relationships.
func (m *ConceptualModel) OwnershipRelationships() []*ConceptualRelationship {
	var out []*ConceptualRelationship
	for _, r := range m.Relationships {
		if r.Semantics == SemanticsAggregation || r.Semantics == SemanticsComposition {
			out = append(out, r)
		}
	}
	return out
}

// AddToHierarchy appends subclass to the chain containing superclass, or
// starts a new chain. Searching all chains lets multi-level hierarchies
// (a subclass of a subclass) extend the chain of their root.
func (m *ConceptualModel) AddToHierarchy(superclass, subclass string) {
	for i, chain := range m.InheritanceHierarchies {
		for _, name := range chain {
			if name == superclass {
				m.InheritanceHierarchies[i] = append(chain, subclass)
				return
			}
		}
	}
	m.InheritanceHierarchies = append(m.InheritanceHierarchies, []string{superclass, subclass})
}

// AddWeakEntity records a weak entity under its owner.
func (m *ConceptualModel) AddWeakEntity(owner, dependent string) {
	m.WeakEntityGroups[owner] = append(m.WeakEntityGroups[owner], dependent)
}

// ToMap renders the model as a plain nested map, with per-kind statistics.
func (m *ConceptualModel) ToMap() map[string]any {
	entities := make(map[string]any, len(m.entities))
	for name, e := range m.entities {
		entities[name] = e.ToMap()
	}
	relationships := make([]map[string]any, 0, len(m.Relationships))
	for _, r := range m.Relationships {
		relationships = append(relationships, r.ToMap())
	}
	return map[string]any{
		"name":                    m.Name,
		"source_schema_name":      m.SourceSchemaName,
		"entities":                entities,
		"relationships":           relationships,
		"inheritance_hierarchies": m.InheritanceHierarchies,
		"weak_entity_groups":      m.WeakEntityGroups,
		"statistics": map[string]any{
			"total_entities":            len(m.entities),
			"strong_entities":           len(m.StrongEntities()),
			"weak_entities":             len(m.WeakEntities()),
			"total_relationships":       len(m.Relationships),
			"inheritance_relationships": len(m.InheritanceRelationships()),
			"ownership_relationships":   len(m.OwnershipRelationships()),
		},
	}
}
