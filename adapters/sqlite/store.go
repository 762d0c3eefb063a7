// Package sqlite implements the query capability over SQLite. It executes
// only the equality/conjunction lookups binding resolution needs; it is not
// a general query layer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/PatrickOgilvie/honertia/core/binding"
	"github.com/PatrickOgilvie/honertia/core/schema"
)

// Store implements binding.Querier over a SQLite database. The schema map
// doubles as an identifier whitelist: collection and column names never
// reach SQL text unless the host declared them at configuration time.
type Store struct {
	db     *sql.DB
	schema schema.Map
}

// Open opens the database at path and applies the usual pragmas.
func Open(path string, s schema.Map) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	return &Store{db: db, schema: s}, nil
}

// FromDB wraps an existing connection.
func FromDB(db *sql.DB, s schema.Map) *Store {
	return &Store{db: db, schema: s}
}

// Query returns the first row of the collection matching every clause.
// Matches are ordered by id (when the collection has one) so "first" is
// deterministic across runs.
func (s *Store) Query(ctx context.Context, collection string, pred binding.Predicate) (binding.Row, bool, error) {
	col, ok := s.schema.Collection(collection)
	if !ok {
		return nil, false, fmt.Errorf("collection %q not in schema", collection)
	}

	var conditions []string
	var args []any
	for _, clause := range pred {
		if !col.HasColumn(clause.Column) {
			return nil, false, fmt.Errorf("collection %q has no column %q", collection, clause.Column)
		}
		conditions = append(conditions, clause.Column+" = ?")
		args = append(args, clause.Value)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(col.Columns, ", "), col.Name)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if col.HasColumn("id") {
		query += " ORDER BY id"
	}
	query += " LIMIT 1"

	values := make([]any, len(col.Columns))
	dest := make([]any, len(col.Columns))
	for i := range values {
		dest[i] = &values[i]
	}

	err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	row := make(binding.Row, len(col.Columns))
	for i, name := range col.Columns {
		row[name] = fromDB(values[i])
	}
	return row, true, nil
}

// Insert adds a record, generating a UUID id when none is supplied. Columns
// not declared in the schema are ignored. Intended for seeding and tests.
func (s *Store) Insert(ctx context.Context, collection string, row binding.Row) (string, error) {
	col, ok := s.schema.Collection(collection)
	if !ok {
		return "", fmt.Errorf("collection %q not in schema", collection)
	}

	id, _ := row["id"].(string)
	if id == "" && col.HasColumn("id") {
		id = uuid.New().String()
		row["id"] = id
	}

	var columns []string
	var placeholders []string
	var args []any
	for _, name := range col.Columns {
		val, ok := row[name]
		if !ok {
			continue
		}
		columns = append(columns, name)
		placeholders = append(placeholders, "?")
		args = append(args, val)
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		col.Name,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := s.db.ExecContext(ctx, insert, args...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", col.Name, err)
	}
	return id, nil
}

// CreateTables creates a TEXT-columned table per schema collection. Schema
// migration proper is out of scope; this covers demos and tests.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, name := range s.schema.Names() {
		col, _ := s.schema.Collection(name)

		defs := make([]string, 0, len(col.Columns))
		for _, c := range col.Columns {
			def := c + " TEXT"
			if c == "id" {
				def += " PRIMARY KEY"
			}
			defs = append(defs, def)
		}

		create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", col.Name, strings.Join(defs, ", "))
		if _, err := s.db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("create table %s: %w", col.Name, err)
		}
	}
	return nil
}

// DB exposes the underlying handle for the database capability.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// fromDB normalizes driver values: byte slices become strings for text
// columns.
func fromDB(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var _ binding.Querier = (*Store)(nil)
