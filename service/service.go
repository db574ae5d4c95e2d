package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/schema"
	"github.com/ivancley/gestao-conhecimento-back/store"
	"github.com/ivancley/gestao-conhecimento-back/utils"
)

var (
	// ErrNotFound no row with the given id (or not owned by the caller)
	ErrNotFound = errors.New("record not found")
	// ErrSoftDeleteUnsupported entity has no soft delete column
	ErrSoftDeleteUnsupported = errors.New("entity does not support soft delete")
)

const defaultLimit = 100

// Config wires one service instance. Everything is injected: the service
// owns no globals.
type Config struct {
	Registry *schema.Registry
	Entity   string
	Store    *store.Store
	Planner  *query.Planner
	Logger   logger.Interface
	// SearchFields are the (possibly dotted) fields the free-text search
	// parameter matches against.
	SearchFields []string
}

// Service is the generic CRUD surface over one entity. Results are
// documents keyed by database column name, with eager loaded
// relationships attached under their relationship names.
type Service struct {
	entity       *schema.Entity
	store        *store.Store
	compiler     *query.Compiler
	planner      *query.Planner
	log          logger.Interface
	searchFields []string
}

// New builds a service for the configured entity.
func New(cfg Config) (*Service, error) {
	entity, err := cfg.Registry.Entity(cfg.Entity)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default
	}
	planner := cfg.Planner
	if planner == nil {
		planner = query.NewPlanner(nil, log)
	}
	return &Service{
		entity:       entity,
		store:        cfg.Store,
		compiler:     query.NewCompiler(log),
		planner:      planner,
		log:          log,
		searchFields: cfg.SearchFields,
	}, nil
}

// Entity returns the entity descriptor the service operates on.
func (s *Service) Entity() *schema.Entity {
	return s.entity
}

// ListOptions are the raw request parameters of a list call.
type ListOptions struct {
	Params  url.Values // raw query parameters, scanned for the filter grammar
	Search  string
	Select  string
	Include string
	SortBy  string
	SortDir string
	Skip    int
	Limit   int
	UserID  *uuid.UUID // scope results to rows owned by this user
}

// List returns one page of entities plus the unpaged total, applying
// filters, free-text search, sorting, eager loading, and projection.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]map[string]interface{}, int64, error) {
	return s.list(ctx, opts, nil, false)
}

// GetOptions are the raw request parameters of a single-row fetch.
type GetOptions struct {
	Include string
	Select  string
	UserID  *uuid.UUID
}

// GetByID returns one entity by primary key, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, opts GetOptions) (map[string]interface{}, error) {
	row, err := s.fetch(ctx, id, opts.UserID, nil)
	if err != nil {
		return nil, err
	}

	rows := []map[string]interface{}{row}
	if err := s.load(ctx, rows, opts.Include, opts.Select); err != nil {
		return nil, err
	}

	rows, err = s.project(rows, opts.Select)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// Create inserts a new entity, filling the audit columns, and returns it
// with every relationship loaded.
func (s *Service) Create(ctx context.Context, values map[string]interface{}) (map[string]interface{}, error) {
	row := s.knownColumns(values)

	id := uuid.New()
	if raw, ok := row["id"]; ok {
		if parsed, ok := raw.(uuid.UUID); ok {
			id = parsed
		} else if parsed, err := uuid.Parse(fmt.Sprint(raw)); err == nil {
			id = parsed
		}
	}
	row["id"] = id

	now := time.Now()
	s.setIfColumn(row, "created_at", now)
	s.setIfColumn(row, "updated_at", now)
	s.defaultIfColumn(row, "flg_ativo", true)
	s.defaultIfColumn(row, "flg_excluido", false)

	if err := s.store.Insert(ctx, s.entity, row); err != nil {
		return nil, err
	}

	// reload with every relationship attached, the way callers expect a
	// freshly created record to come back
	include := strings.Join(s.entity.RelationshipNames(), ",")
	return s.GetByID(ctx, id, GetOptions{Include: include})
}

// Update patches the given columns of an entity and returns the updated
// row. Unknown keys are dropped with a warning rather than rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, values map[string]interface{}, userID *uuid.UUID) (map[string]interface{}, error) {
	if _, err := s.fetch(ctx, id, userID, nil); err != nil {
		return nil, err
	}

	row := s.knownColumns(values)
	delete(row, "id")
	s.setIfColumn(row, "updated_at", time.Now())

	if len(row) > 0 {
		if _, err := s.store.Update(ctx, s.entity, id, row); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id, GetOptions{UserID: userID})
}

// Delete soft deletes an entity when it has a soft delete column, and
// falls back to a hard delete otherwise.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if _, err := s.fetch(ctx, id, userID, nil); err != nil {
		return err
	}

	if s.entity.Column("flg_excluido") == nil {
		_, err := s.store.Delete(ctx, s.entity, id)
		return err
	}

	_, err := s.store.Update(ctx, s.entity, id, map[string]interface{}{
		"flg_excluido": true,
		"updated_at":   time.Now(),
	})
	return err
}

// Restore clears the soft delete flag of an entity.
func (s *Service) Restore(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (map[string]interface{}, error) {
	if s.entity.Column("flg_excluido") == nil {
		return nil, fmt.Errorf("%w: %v", ErrSoftDeleteUnsupported, s.entity.Name)
	}

	if _, err := s.fetch(ctx, id, userID, nil); err != nil {
		return nil, err
	}

	_, err := s.store.Update(ctx, s.entity, id, map[string]interface{}{
		"flg_excluido": false,
		"updated_at":   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, GetOptions{UserID: userID})
}

// GetDeleted lists soft deleted entities only.
func (s *Service) GetDeleted(ctx context.Context, opts ListOptions) ([]map[string]interface{}, int64, error) {
	if s.entity.Column("flg_excluido") == nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSoftDeleteUnsupported, s.entity.Name)
	}

	deleted := query.Predicate{
		Column: s.entity.Column("flg_excluido"),
		Entity: s.entity,
		Op:     query.OpEq,
		Value:  true,
	}
	return s.list(ctx, opts, []query.Predicate{deleted}, true)
}

// HardDelete permanently removes an entity.
func (s *Service) HardDelete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if _, err := s.fetch(ctx, id, userID, nil); err != nil {
		return err
	}
	_, err := s.store.Delete(ctx, s.entity, id)
	return err
}

// list runs the shared List/GetDeleted pipeline: compile, count, page,
// eager load, project.
func (s *Service) list(ctx context.Context, opts ListOptions, extra []query.Predicate, withDeleted bool) ([]map[string]interface{}, int64, error) {
	cq, err := s.compile(opts, extra, withDeleted)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.Count(ctx, cq)
	if err != nil {
		return nil, 0, err
	}

	cq.Limit = opts.Limit
	if cq.Limit <= 0 {
		cq.Limit = defaultLimit
	}
	cq.Offset = opts.Skip

	rows, err := s.store.Select(ctx, cq)
	if err != nil {
		return nil, 0, err
	}

	if err := s.load(ctx, rows, opts.Include, opts.Select); err != nil {
		return nil, 0, err
	}

	rows, err = s.project(rows, opts.Select)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// compile builds the compiled query shared by List and GetDeleted:
// filters, ownership scoping, the soft delete posture, search, and
// sorting over one join plan.
func (s *Service) compile(opts ListOptions, extra []query.Predicate, withDeleted bool) (*query.CompiledQuery, error) {
	filters := query.ParseFilters(opts.Params, s.log)
	plan := query.NewJoinPlan()
	allowed := s.entity.Relations

	predicates, err := s.compiler.CompileFilters(s.entity, filters, allowed, plan)
	if err != nil {
		return nil, err
	}
	predicates = append(predicates, extra...)

	if !withDeleted {
		if column := s.entity.Column("flg_excluido"); column != nil {
			predicates = append(predicates, query.Predicate{
				Column: column,
				Entity: s.entity,
				Op:     query.OpEq,
				Value:  false,
			})
		}
	}

	if opts.UserID != nil {
		if owner := s.entity.Column("usuario_id"); owner != nil {
			predicates = append(predicates, query.Predicate{
				Column: owner,
				Entity: s.entity,
				Op:     query.OpEq,
				Value:  *opts.UserID,
			})
		}
	}

	search, err := s.compileSearch(opts.Search, allowed, plan)
	if err != nil {
		return nil, err
	}

	order, err := s.compiler.CompileSort(s.entity, opts.SortBy, opts.SortDir, allowed, plan)
	if err != nil {
		return nil, err
	}

	return &query.CompiledQuery{
		Entity:     s.entity,
		Predicates: predicates,
		Search:     search,
		Joins:      plan,
		Order:      order,
	}, nil
}

// compileSearch turns the free-text search parameter into one ilike
// predicate per configured search field, combined disjunctively. Fields
// that fail to resolve are skipped with a warning, matching the lenient
// posture of search as opposed to filters.
func (s *Service) compileSearch(term string, allowed map[string]*schema.Relationship, plan *query.JoinPlan) ([]query.Predicate, error) {
	if term == "" || len(s.searchFields) == 0 {
		return nil, nil
	}

	pattern := "%" + utils.Fold(term) + "%"
	var predicates []query.Predicate

	for _, field := range s.searchFields {
		path, err := schema.ResolvePath(s.entity, field, allowed)
		if err != nil {
			s.log.Warn("search field %q skipped: %v", field, err)
			continue
		}
		if path.Column.DataType != schema.String {
			s.log.Warn("search field %q skipped: not a text column", field)
			continue
		}
		for _, hop := range path.Hops {
			plan.Add(hop)
		}
		predicates = append(predicates, query.Predicate{
			Column: path.Column,
			Entity: path.Entity,
			Hops:   path.Hops,
			Op:     query.OpILike,
			Value:  pattern,
		})
	}
	return predicates, nil
}

// fetch loads one bare row by primary key with ownership scoping.
func (s *Service) fetch(ctx context.Context, id uuid.UUID, userID *uuid.UUID, extra []query.Predicate) (map[string]interface{}, error) {
	predicates := []query.Predicate{{
		Column: s.entity.PrimaryColumn,
		Entity: s.entity,
		Op:     query.OpEq,
		Value:  id,
	}}
	predicates = append(predicates, extra...)

	if userID != nil {
		if owner := s.entity.Column("usuario_id"); owner != nil {
			predicates = append(predicates, query.Predicate{
				Column: owner,
				Entity: s.entity,
				Op:     query.OpEq,
				Value:  *userID,
			})
		}
	}

	cq := &query.CompiledQuery{
		Entity:     s.entity,
		Predicates: predicates,
		Joins:      query.NewJoinPlan(),
		Limit:      1,
	}

	rows, err := s.store.Select(ctx, cq)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %v %v", ErrNotFound, s.entity.Name, id)
	}
	return rows[0], nil
}

// load eager loads the relationships the include (or, failing that, the
// select) expression asks for. Everything else stays suppressed.
func (s *Service) load(ctx context.Context, rows []map[string]interface{}, include, selectParam string) error {
	if len(rows) == 0 {
		return nil
	}
	includeParam := include
	if includeParam == "" {
		includeParam = selectParam
	}
	plan := s.planner.Plan(s.entity, includeParam)
	return s.store.LoadRelated(ctx, s.entity, rows, plan)
}

func (s *Service) project(rows []map[string]interface{}, selectParam string) ([]map[string]interface{}, error) {
	tree, err := query.ParseSelect(selectParam)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return rows, nil
	}
	projected := make([]map[string]interface{}, len(rows))
	for idx, row := range rows {
		projected[idx] = query.Project(row, tree)
	}
	return projected, nil
}

// knownColumns keeps only keys that name a column of the entity, warning
// about the rest.
func (s *Service) knownColumns(values map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(values))
	for name, value := range values {
		if s.entity.Column(name) == nil {
			s.log.Warn("field %q not found in %v, dropped", name, s.entity.Name)
			continue
		}
		row[name] = value
	}
	return row
}

func (s *Service) setIfColumn(row map[string]interface{}, name string, value interface{}) {
	if s.entity.Column(name) != nil {
		row[name] = value
	}
}

func (s *Service) defaultIfColumn(row map[string]interface{}, name string, value interface{}) {
	if s.entity.Column(name) == nil {
		return
	}
	if _, ok := row[name]; !ok {
		row[name] = value
	}
}
