// Package route parses declarative route patterns into the host router's
// native form plus the ordered list of model bindings the path declares.
//
// A pattern is literal text with `{name}` or `{name:column}` placeholders:
//
//	/projects/{project}/tasks/{task:uuid}
//
// Translation happens once at registration time and the result is cached on
// the route, so malformed patterns surface as configuration errors before
// the server ever takes traffic.
package route

import (
	"fmt"
	"strings"

	"github.com/PatrickOgilvie/honertia/core/convention"
)

// Binding is one placeholder's recipe for resolving a stored row. Created
// once per route and never mutated afterward.
type Binding struct {
	// Param is the placeholder name, e.g. "project".
	Param string

	// Collection is the table looked up: the pluralized param name unless
	// the route overrides it.
	Collection string

	// Column is the lookup column: the annotation after ':' or "id".
	Column string
}

// Pattern is an immutable parsed route pattern.
type Pattern struct {
	// Raw is the pattern as registered.
	Raw string

	// Native is the pattern in chi's parameter syntax. Column annotations
	// are stripped: chi would read `{task:uuid}` as a regex constraint.
	Native string

	// Bindings lists the placeholders in left-to-right path order.
	Bindings []Binding
}

// Translate parses a route pattern. It is pure and deterministic: no I/O,
// same output for the same input.
func Translate(pattern string) (Pattern, error) {
	var native strings.Builder
	var bindings []Binding

	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if close := strings.IndexByte(rest, '}'); close >= 0 {
				return Pattern{}, fmt.Errorf("route pattern %q: unmatched '}'", pattern)
			}
			native.WriteString(rest)
			break
		}

		if stray := strings.IndexByte(rest[:open], '}'); stray >= 0 {
			return Pattern{}, fmt.Errorf("route pattern %q: unmatched '}'", pattern)
		}

		native.WriteString(rest[:open])
		rest = rest[open+1:]

		close := strings.IndexByte(rest, '}')
		if close < 0 {
			return Pattern{}, fmt.Errorf("route pattern %q: unmatched '{'", pattern)
		}
		if nested := strings.IndexByte(rest[:close], '{'); nested >= 0 {
			return Pattern{}, fmt.Errorf("route pattern %q: nested '{'", pattern)
		}

		b, err := parsePlaceholder(rest[:close])
		if err != nil {
			return Pattern{}, fmt.Errorf("route pattern %q: %w", pattern, err)
		}
		bindings = append(bindings, b)

		native.WriteString("{")
		native.WriteString(b.Param)
		native.WriteString("}")

		rest = rest[close+1:]
	}

	return Pattern{Raw: pattern, Native: native.String(), Bindings: bindings}, nil
}

// parsePlaceholder parses the inside of a `{...}` placeholder: a parameter
// name with an optional `:column` lookup annotation.
func parsePlaceholder(body string) (Binding, error) {
	name := body
	column := "id"

	if i := strings.IndexByte(body, ':'); i >= 0 {
		name = body[:i]
		column = body[i+1:]
		if column == "" {
			return Binding{}, fmt.Errorf("placeholder {%s}: empty lookup column", body)
		}
	}

	if name == "" {
		return Binding{}, fmt.Errorf("placeholder {%s}: empty parameter name", body)
	}

	return Binding{
		Param:      name,
		Collection: convention.Pluralize(name),
		Column:     column,
	}, nil
}
