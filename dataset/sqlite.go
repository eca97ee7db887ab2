package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/dataset/migrations"
)

// Store is a SQLite copy of a dataset, one table per collection. Each row
// keeps the full record as JSON in its data column next to a few query columns.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// migrate applies the NNN_name.up.sql files of fsys newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// table describes how the records of one collection become rows.
type table[T any] struct {
	name    string
	columns []string
	values  func(i int, r *T) []any
}

// Export replaces the content of the database with ds, in a single transaction.
func (s *Store) Export(ctx context.Context, ds *cadobr.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	steps := []func() error{
		func() error {
			return insert(ctx, tx, ds.Documents, table[cadobr.DocumentRecord]{"documents", []string{"type", "path"},
				func(_ int, r *cadobr.DocumentRecord) []any { return []any{r.ID, string(r.Type), r.Path} }})
		},
		func() error {
			return insert(ctx, tx, ds.Parties, table[cadobr.Party]{"parties", []string{"name", "cpf", "cnpj"},
				func(_ int, r *cadobr.Party) []any {
					return []any{r.ID, r.NormalizedName, nullString(r.CPF), nullString(r.CNPJ)}
				}})
		},
		func() error {
			return insert(ctx, tx, ds.Properties, table[cadobr.Property]{"properties", []string{"matricula"},
				func(_ int, r *cadobr.Property) []any { return []any{r.ID, r.Matricula} }})
		},
		func() error {
			return insert(ctx, tx, ds.Operations, table[cadobr.Operation]{"operations", []string{"number", "kind"},
				func(_ int, r *cadobr.Operation) []any { return []any{r.ID, r.Number, nullString(r.Kind)} }})
		},
		func() error {
			return insert(ctx, tx, ds.Obligations, table[cadobr.Obligation]{"obligations", []string{"property_id", "ref", "status", "present_cents"},
				func(_ int, r *cadobr.Obligation) []any {
					var present any
					if r.PresentCents != nil {
						present = int64(*r.PresentCents)
					}
					return []any{r.ID, r.PropertyID, r.Ref, string(r.Status), present}
				}})
		},
		func() error {
			return insert(ctx, tx, ds.PropertyEvents, table[cadobr.PropertyEvent]{"property_events", []string{"seq", "property_id", "kind", "date", "ref"},
				func(i int, r *cadobr.PropertyEvent) []any {
					return []any{r.ID, i, r.PropertyID, string(r.Kind), r.Date.String(), nullString(r.Ref)}
				}})
		},
		func() error {
			return insert(ctx, tx, ds.Links, table[cadobr.Link]{"links", []string{"type", "from_id", "to_id", "tier"},
				func(_ int, r *cadobr.Link) []any { return []any{r.ID, r.Type, r.FromID, r.ToID, string(r.Tier)} }})
		},
		func() error {
			return insert(ctx, tx, ds.Pendencies, table[cadobr.Pendency]{"pendencies", []string{"entity_type", "entity_id", "reason"},
				func(_ int, r *cadobr.Pendency) []any { return []any{r.ID, r.EntityType, r.EntityID, r.Reason} }})
		},
		func() error {
			return insert(ctx, tx, ds.NovationCandidates, table[cadobr.NovationCandidate]{"novation_candidates",
				[]string{"property_id", "old_obligation_id", "new_obligation_id", "tier", "rank"},
				func(_ int, r *cadobr.NovationCandidate) []any {
					return []any{r.ID, r.PropertyID, r.OldObligationID, r.NewObligationID, string(r.Tier), r.Rank}
				}})
		},
	}
	for _, step := range steps {
		if err = step(); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

// insert clears the table then writes one row per record: id, the table columns, data.
func insert[T any](ctx context.Context, tx *sql.Tx, records []*T, t table[T]) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.name); err != nil {
		return fmt.Errorf("clearing %s: %w", t.name, err)
	}
	columns := append(append([]string{"id"}, t.columns...), "data")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?%s)",
		t.name, strings.Join(columns, ", "), strings.Repeat(", ?", len(columns)-1))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", t.name, err)
	}
	defer stmt.Close()

	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshalling %s record: %w", t.name, err)
		}
		args := append(t.values(i, r), string(data))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", t.name, err)
		}
	}
	return nil
}

// Count returns the number of rows of table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
