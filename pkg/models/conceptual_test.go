package models

import (
	"reflect"
	"testing"
)

func TestParseCardinality(t *testing.T) {
	tests := []struct {
		input    string
		expected RelationshipCardinality
	}{
		{"1:1", OneToOne},
		{"1:N", OneToMany},
		{"N:1", ManyToOne},
		{"N:M", ManyToMany},
		{"", ManyToOne},
		{"garbage", ManyToOne},
	}

	for _, tt := range tests {
		if got := ParseCardinality(tt.input); got != tt.expected {
			t.Errorf("ParseCardinality(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestAddToHierarchy(t *testing.T) {
	m := NewConceptualModel("c", "s")

	m.AddToHierarchy("person", "employee")
	m.AddToHierarchy("person", "customer")
	// Multi-level: subclass of a subclass extends the same chain.
	m.AddToHierarchy("employee", "manager")
	m.AddToHierarchy("vehicle", "car")

	want := [][]string{
		{"person", "employee", "customer", "manager"},
		{"vehicle", "car"},
	}
	if !reflect.DeepEqual(m.InheritanceHierarchies, want) {
		t.Errorf("InheritanceHierarchies = %v, want %v", m.InheritanceHierarchies, want)
	}
}

func TestEntityFilters(t *testing.T) {
	m := NewConceptualModel("c", "s")
	m.AddEntity(&ConceptualEntity{Name: "students", EntityType: EntityTypeStrong})
	m.AddEntity(&ConceptualEntity{Name: "grades", EntityType: EntityTypeWeak, OwnerEntity: "students"})
	m.AddWeakEntity("students", "grades")

	if len(m.StrongEntities()) != 1 || m.StrongEntities()[0].Name != "students" {
		t.Errorf("StrongEntities = %v", m.StrongEntities())
	}
	if len(m.WeakEntities()) != 1 || m.WeakEntities()[0].Name != "grades" {
		t.Errorf("WeakEntities = %v", m.WeakEntities())
	}
	if got := m.WeakEntityGroups["students"]; !reflect.DeepEqual(got, []string{"grades"}) {
		t.Errorf("WeakEntityGroups[students] = %v", got)
	}
}

func TestRelationshipFilters(t *testing.T) {
	m := NewConceptualModel("c", "s")
	m.AddRelationship(&ConceptualRelationship{Name: "IS_A_PERSON", Semantics: SemanticsInheritance})
	m.AddRelationship(&ConceptualRelationship{Name: "PART_OF_ORDER", Semantics: SemanticsComposition})
	m.AddRelationship(&ConceptualRelationship{Name: "HAS_TAG", Semantics: SemanticsAssociation})
	m.AddRelationship(&ConceptualRelationship{Name: "PART_OF_TEAM", Semantics: SemanticsAggregation})

	if got := len(m.InheritanceRelationships()); got != 1 {
		t.Errorf("InheritanceRelationships = %d, want 1", got)
	}
	if got := len(m.OwnershipRelationships()); got != 2 {
		t.Errorf("OwnershipRelationships = %d, want 2", got)
	}
}
