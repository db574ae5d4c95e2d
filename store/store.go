package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/schema"
	"github.com/ivancley/gestao-conhecimento-back/utils"
)

const driverName = "sqlite3_fold"

func init() {
	// free-text search folds case and combining marks on both sides of
	// its LIKE, so every connection carries the fold function
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", utils.Fold, true)
		},
	})
}

// Store executes compiled query plans against the relational database.
// It owns no schema knowledge of its own: every identifier it renders
// comes from registry descriptors.
type Store struct {
	db  *sql.DB
	log logger.Interface
}

// New wraps an open database handle.
func New(db *sql.DB, log logger.Interface) *Store {
	if log == nil {
		log = logger.Default
	}
	return &Store{db: db, log: log}
}

// Open opens a sqlite database at the given DSN.
func Open(dsn string, log logger.Interface) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db, log), nil
}

// DB exposes the underlying handle, mainly for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Select executes a compiled query and scans every row into a document.
func (s *Store) Select(ctx context.Context, cq *query.CompiledQuery) ([]map[string]interface{}, error) {
	stmt, err := BuildSelect(cq)
	if err != nil {
		return nil, err
	}

	s.log.Debug("select: %s %v", stmt.SQL.String(), stmt.Vars)
	rows, err := s.db.QueryContext(ctx, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		return nil, fmt.Errorf("select %v: %w", cq.Entity.Name, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Count executes the COUNT form of a compiled query.
func (s *Store) Count(ctx context.Context, cq *query.CompiledQuery) (int64, error) {
	stmt, err := BuildCount(cq)
	if err != nil {
		return 0, err
	}

	s.log.Debug("count: %s %v", stmt.SQL.String(), stmt.Vars)
	var total int64
	if err := s.db.QueryRowContext(ctx, stmt.SQL.String(), stmt.Vars...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %v: %w", cq.Entity.Name, err)
	}
	return total, nil
}

// Insert writes one row. Values are keyed by database column name; keys
// that name no column of the entity are rejected.
func (s *Store) Insert(ctx context.Context, entity *schema.Entity, values map[string]interface{}) error {
	columns := make([]string, 0, len(values))
	for name := range values {
		if entity.Column(name) == nil {
			return fmt.Errorf("%w: %v has no column %q", schema.ErrUnknownField, entity.Name, name)
		}
		columns = append(columns, name)
	}
	sort.Strings(columns)

	stmt := &Statement{}
	stmt.WriteString("INSERT INTO ")
	stmt.WriteQuoted(entity.Table)
	stmt.WriteString(" (")
	for idx, name := range columns {
		if idx > 0 {
			stmt.WriteByte(',')
		}
		stmt.WriteQuoted(name)
	}
	stmt.WriteString(") VALUES (")
	for idx, name := range columns {
		if idx > 0 {
			stmt.WriteByte(',')
		}
		stmt.AddVar(values[name])
	}
	stmt.WriteByte(')')

	s.log.Debug("insert: %s %v", stmt.SQL.String(), stmt.Vars)
	if _, err := s.db.ExecContext(ctx, stmt.SQL.String(), stmt.Vars...); err != nil {
		return fmt.Errorf("insert %v: %w", entity.Name, err)
	}
	return nil
}

// Update writes the given columns of the row with the given primary key
// and reports how many rows changed.
func (s *Store) Update(ctx context.Context, entity *schema.Entity, id interface{}, values map[string]interface{}) (int64, error) {
	columns := make([]string, 0, len(values))
	for name := range values {
		if entity.Column(name) == nil {
			return 0, fmt.Errorf("%w: %v has no column %q", schema.ErrUnknownField, entity.Name, name)
		}
		columns = append(columns, name)
	}
	sort.Strings(columns)

	stmt := &Statement{}
	stmt.WriteString("UPDATE ")
	stmt.WriteQuoted(entity.Table)
	stmt.WriteString(" SET ")
	for idx, name := range columns {
		if idx > 0 {
			stmt.WriteByte(',')
		}
		stmt.WriteQuoted(name)
		stmt.WriteString(" = ")
		stmt.AddVar(values[name])
	}
	stmt.WriteString(" WHERE ")
	stmt.WriteQuoted(entity.PrimaryColumn.DBName)
	stmt.WriteString(" = ")
	stmt.AddVar(id)

	s.log.Debug("update: %s %v", stmt.SQL.String(), stmt.Vars)
	result, err := s.db.ExecContext(ctx, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		return 0, fmt.Errorf("update %v: %w", entity.Name, err)
	}
	return result.RowsAffected()
}

// Delete removes the row with the given primary key and reports how many
// rows were removed.
func (s *Store) Delete(ctx context.Context, entity *schema.Entity, id interface{}) (int64, error) {
	stmt := &Statement{}
	stmt.WriteString("DELETE FROM ")
	stmt.WriteQuoted(entity.Table)
	stmt.WriteString(" WHERE ")
	stmt.WriteQuoted(entity.PrimaryColumn.DBName)
	stmt.WriteString(" = ")
	stmt.AddVar(id)

	s.log.Debug("delete: %s %v", stmt.SQL.String(), stmt.Vars)
	result, err := s.db.ExecContext(ctx, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		return 0, fmt.Errorf("delete %v: %w", entity.Name, err)
	}
	return result.RowsAffected()
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	documents := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for idx := range values {
			pointers[idx] = &values[idx]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		document := make(map[string]interface{}, len(columns))
		for idx, name := range columns {
			document[name] = normalizeValue(values[idx])
		}
		documents = append(documents, document)
	}
	return documents, rows.Err()
}

// normalizeValue keeps scanned documents comparable and serializable:
// byte slices become strings, times stay times, the rest passes through.
func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v
	}
	return value
}
