package query

import (
	"sort"
	"strings"

	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/schema"
)

// LoadMode classifies one relationship of the base entity for a request.
type LoadMode int

const (
	// Suppress blocks the relationship from loading at all. This is the
	// default posture: nothing is eager loaded unless asked for.
	Suppress LoadMode = iota
	// Load fetches the relationship with one batched follow-up query per
	// relationship, not a join, so result rows never multiply.
	Load
)

// LoadPlan is the per-request load/suppress decision for every declared
// relationship of the base entity, keyed by relationship name.
type LoadPlan map[string]LoadMode

// Loaded returns the names of relationships marked Load, sorted.
func (plan LoadPlan) Loaded() []string {
	var names []string
	for name, mode := range plan {
		if mode == Load {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Planner decides which relationships are eager loaded for a request.
// Exclusions are per-entity relationship names that are suppressed no
// matter what the request asks for, configured where two relationship
// paths would otherwise load the same rows twice.
type Planner struct {
	exclusions map[string]map[string]bool
	log        logger.Interface
}

// NewPlanner creates a planner with the given per-entity exclusion lists.
func NewPlanner(exclusions map[string][]string, log logger.Interface) *Planner {
	if log == nil {
		log = logger.Default
	}
	planner := &Planner{exclusions: map[string]map[string]bool{}, log: log}
	for entity, names := range exclusions {
		set := map[string]bool{}
		for _, name := range names {
			set[name] = true
		}
		planner.exclusions[entity] = set
	}
	return planner
}

// Plan classifies every relationship of the base entity against the raw
// include (or select) expression. Tokens that do not name a declared
// relationship are ignored, not rejected.
func (p *Planner) Plan(base *schema.Entity, includeParam string) LoadPlan {
	declared := map[string]bool{}
	for _, name := range base.RelationshipNames() {
		declared[name] = true
	}

	requested := ExtractRelationships(includeParam, declared)
	excluded := p.exclusions[base.Name]

	plan := LoadPlan{}
	for _, name := range base.RelationshipNames() {
		if excluded[name] {
			p.log.Debug("skipping load of %v.%v: excluded by configuration", base.Name, name)
			plan[name] = Suppress
			continue
		}
		if requested[name] {
			plan[name] = Load
		} else {
			plan[name] = Suppress
		}
	}
	return plan
}

// ExtractRelationships pulls relationship names out of an include or
// select expression, accepting both the bracket syntax ("[tenants].nome")
// and the legacy dotted syntax ("roles.nome", or a bare "roles"). Legacy
// tokens only count when their first segment names a declared
// relationship, since a bare segment may just be a column.
func ExtractRelationships(param string, declared map[string]bool) map[string]bool {
	relationships := map[string]bool{}
	if param == "" {
		return relationships
	}

	for _, token := range ParseInclude(param) {
		if strings.HasPrefix(token, "[") {
			if end := strings.Index(token, "]"); end > 1 {
				relationships[token[1:end]] = true
			}
			continue
		}

		base := token
		if dot := strings.Index(token, "."); dot >= 0 {
			base = token[:dot]
		}
		if declared[base] {
			relationships[base] = true
		}
	}

	return relationships
}
