package naming

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple table", "users", "Users"},
		{"snake case", "course_enrollments", "CourseEnrollments"},
		{"already pascal", "OrderItems", "Orderitems"},
		{"special characters stripped", "user-accounts!", "Useraccounts"},
		{"leading digit prefixed", "2fa_tokens", "N2faTokens"},
		{"empty becomes Node", "", "Node"},
		{"only specials becomes Node", "$%^", "Node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.input); got != tt.expected {
				t.Errorf("Label(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple column", "name", "name"},
		{"snake case", "first_name", "firstName"},
		{"multiple segments", "created_at_utc", "createdAtUtc"},
		{"leading underscore", "_internal", "internal"},
		{"empty", "", "property"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PropertyName(tt.input); got != tt.expected {
				t.Errorf("PropertyName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRelationshipTypeName(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected string
	}{
		{"plural tables singularized", "orders", "customers", "ORDER_CUSTOMER"},
		{"singular stays", "order", "customer", "ORDER_CUSTOMER"},
		{"snake case", "order_items", "products", "ORDER_ITEM_PRODUCT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelationshipTypeName(tt.from, tt.to); got != tt.expected {
				t.Errorf("RelationshipTypeName(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestJunctionRelationshipName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"enrollments", "ENROLLMENTS"},
		{"course_enrollments", "COURSE_ENROLLMENTS"},
		{"student_course_map", "STUDENT_COURSE_MAP"},
	}

	for _, tt := range tests {
		if got := JunctionRelationshipName(tt.input); got != tt.expected {
			t.Errorf("JunctionRelationshipName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{"Users", "_private", "a1", "CourseEnrollments"}
	for _, s := range valid {
		if !ValidIdentifier(s) {
			t.Errorf("ValidIdentifier(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "1abc", "has space", "dash-ed"}
	for _, s := range invalid {
		if ValidIdentifier(s) {
			t.Errorf("ValidIdentifier(%q) = true, want false", s)
		}
	}
}
