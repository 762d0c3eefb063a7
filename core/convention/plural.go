// Package convention derives collection and column names from route
// parameter names. Bindings are configuration, so the rules are small and
// predictable rather than linguistically complete: a surprising irregular
// plural would silently detach a binding from its table.
package convention

import "strings"

// Pluralize returns the collection name for a parameter name.
//
// Rules, in order: words ending in 's', 'x', 'z', 'ch', 'sh' take "es";
// words ending in 'y' swap it for "ies"; everything else takes "s".
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	if strings.HasSuffix(lower, "s") ||
		strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "z") ||
		strings.HasSuffix(lower, "ch") ||
		strings.HasSuffix(lower, "sh") {
		return word + "es"
	}

	if strings.HasSuffix(lower, "y") {
		return word[:len(word)-1] + "ies"
	}

	return word + "s"
}

// Singularize is the inverse of Pluralize. It is used to derive foreign key
// column names (singular parent + "_id") from collection names.
func Singularize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	if strings.HasSuffix(lower, "ies") {
		return word[:len(word)-3] + "y"
	}

	if strings.HasSuffix(lower, "ses") ||
		strings.HasSuffix(lower, "xes") ||
		strings.HasSuffix(lower, "zes") ||
		strings.HasSuffix(lower, "ches") ||
		strings.HasSuffix(lower, "shes") {
		return word[:len(word)-2]
	}

	if strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") {
		return word[:len(word)-1]
	}

	return word
}

// ForeignKey returns the conventional foreign key column a child table uses
// to reference the given parent collection, e.g. "projects" -> "project_id".
func ForeignKey(parentCollection string) string {
	return Singularize(parentCollection) + "_id"
}
