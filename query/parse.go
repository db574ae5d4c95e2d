package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ivancley/gestao-conhecimento-back/logger"
)

var (
	filterPattern  = regexp.MustCompile(`^filter\[(.+?)\]\[(.+?)\]$`)
	bracketPattern = regexp.MustCompile(`^\[([A-Za-z0-9_]+)\]$`)
)

// Filters maps a field specifier to its operator name / value pairs, the
// intermediate form between the wire grammar and the compiler.
type Filters map[string]map[string]interface{}

// ParseFilters extracts filter clauses of the form
// filter[<field>][<operator>]=<value> from raw query parameters. Keys
// that do not match the grammar are ignored, never rejected, so stray
// parameters such as pagination do not break filtering. A field/operator
// pair seen twice keeps the last value and logs a diagnostic.
func ParseFilters(params url.Values, log logger.Interface) Filters {
	filters := Filters{}

	for key, values := range params {
		match := filterPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}

		field := match[1]
		operator := strings.ToLower(match[2])
		if field == "" || operator == "" {
			continue
		}

		for _, raw := range values {
			parsed := ParseFilterValue(raw)

			operators, ok := filters[field]
			if !ok {
				operators = map[string]interface{}{}
				filters[field] = operators
			}

			if previous, dup := operators[operator]; dup {
				log.Warn("overwriting filter %s[%s]: %v replaces %v", field, operator, parsed, previous)
			}
			operators[operator] = parsed
		}
	}

	return filters
}

// ParseFilterValue coerces the common boolean and null spellings; any
// other value stays a string for typed coercion during compilation.
func ParseFilterValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	case "null", "none":
		return nil
	}
	return value
}

// ParseSortDirection validates a sort direction token. Empty input means
// ascending; anything besides asc/desc (case-insensitive) is an error.
func ParseSortDirection(direction string) (desc bool, err error) {
	switch strings.ToLower(direction) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("%w: %q, use asc or desc", ErrInvalidSortDirection, direction)
}

// ParseInclude splits a comma separated include expression into
// relationship name tokens, dropping empties.
func ParseInclude(include string) []string {
	var tokens []string
	for _, token := range strings.Split(include, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// AllElements marks a to-many node in a SelectionTree: the nested rule
// applies to every element of the list field.
const AllElements = "__all__"

// SelectionTree maps field names to either true (keep the scalar), a
// nested SelectionTree (recurse into an object field), or a tree whose
// single AllElements key carries the per-element rule of a list field.
type SelectionTree map[string]interface{}

// ParseSelect builds a SelectionTree from a comma separated selector
// such as "id,nome,[tenants].nome,roles.nome". Bracketed segments mark
// to-many relationships; bare segments with continuation become object
// nodes, bare final segments become leaves. Re-visiting a leaf with a
// nested path upgrades it to an object node. An empty selector yields a
// nil tree, meaning no projection.
func ParseSelect(selector string) (SelectionTree, error) {
	paths := ParseInclude(selector)
	if len(paths) == 0 {
		return nil, nil
	}

	tree := SelectionTree{}

	for _, path := range paths {
		current := tree
		parts := strings.Split(path, ".")

		for i, part := range parts {
			last := i == len(parts)-1

			if strings.ContainsAny(part, "[]") {
				match := bracketPattern.FindStringSubmatch(part)
				if match == nil {
					return nil, fmt.Errorf("%w: malformed segment %q in %q", ErrInvalidSelector, part, path)
				}
				name := match[1]

				container, ok := current[name].(SelectionTree)
				if !ok {
					container = SelectionTree{}
					current[name] = container
				}

				if last {
					container[AllElements] = true
					break
				}

				inner, ok := container[AllElements].(SelectionTree)
				if !ok {
					inner = SelectionTree{}
					container[AllElements] = inner
				}
				current = inner
				continue
			}

			if last {
				if _, ok := current[part].(SelectionTree); !ok {
					current[part] = true
				}
				continue
			}

			nested, ok := current[part].(SelectionTree)
			if !ok {
				nested = SelectionTree{}
				current[part] = nested
			}
			current = nested
		}
	}

	return tree, nil
}
