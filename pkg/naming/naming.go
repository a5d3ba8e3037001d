// Package naming converts relational identifiers into valid property-graph
// identifiers: PascalCase node labels, camelCase property names, and
// SCREAMING_SNAKE_CASE relationship type names.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

var (
	labelStripPattern    = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	propertyPattern      = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	camelBoundaryPattern = regexp.MustCompile(`([A-Z])`)
	collapsePattern      = regexp.MustCompile(`_+`)
)

// Label sanitizes a table or entity name into a node label: special
// characters removed, PascalCase, guaranteed to start with a letter.
func Label(name string) string {
	sanitized := labelStripPattern.ReplaceAllString(name, "")
	if sanitized != "" && !unicode.IsLetter(rune(sanitized[0])) {
		sanitized = "N" + sanitized
	}

	parts := strings.Split(sanitized, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	if b.Len() == 0 {
		return "Node"
	}
	return b.String()
}

// PropertyName sanitizes a column name into a camelCase property name.
func PropertyName(name string) string {
	sanitized := propertyPattern.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")

	parts := strings.Split(sanitized, "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(part))
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	if b.Len() == 0 {
		return "property"
	}
	return b.String()
}

// RelationshipTypeName derives a relationship type name from the two table
// names when no enriched name exists: both names singularized, joined, and
// converted to SCREAMING_SNAKE_CASE.
func RelationshipTypeName(fromTable, toTable string) string {
	name := inflection.Singular(fromTable) + "_" + inflection.Singular(toTable)

	name = camelBoundaryPattern.ReplaceAllString(name, "_$1")
	name = strings.ToUpper(name)
	name = regexp.MustCompile(`[^A-Z0-9_]`).ReplaceAllString(name, "_")
	name = collapsePattern.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// JunctionRelationshipName derives a relationship type name from a junction
// table's own name: snake segments title-cased, rejoined, upper-cased.
func JunctionRelationshipName(junctionTable string) string {
	parts := strings.Split(junctionTable, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.ToUpper(strings.Join(parts, "_"))
}

// ValidIdentifier reports whether s is usable as a graph identifier:
// letter or underscore first, alphanumerics and underscores after.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	first := rune(s[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
