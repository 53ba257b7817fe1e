// Package store persists forms, fields, submissions, and the member
// directory in SQLite. It provides the connected-mode FieldStore behind the
// form builder and the submission sink behind the form renderer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mattlowe/formhall/internal/field"
)

const schema = `
CREATE TABLE IF NOT EXISTS forms (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS form_fields (
	id                 TEXT PRIMARY KEY,
	form_id            TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	label              TEXT NOT NULL,
	field_type         TEXT NOT NULL,
	placeholder        TEXT NOT NULL DEFAULT '',
	help_text          TEXT NOT NULL DEFAULT '',
	default_value      TEXT NOT NULL DEFAULT '',
	required           INTEGER NOT NULL DEFAULT 0,
	min_length         INTEGER,
	max_length         INTEGER,
	min_value          REAL,
	max_value          REAL,
	validation_pattern TEXT NOT NULL DEFAULT '',
	options            TEXT NOT NULL DEFAULT '[]',
	sort_order         INTEGER NOT NULL,
	width              TEXT NOT NULL DEFAULT 'full'
);

CREATE TABLE IF NOT EXISTS form_submissions (
	id                 TEXT PRIMARY KEY,
	form_id            TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	data               TEXT NOT NULL,
	submitted_at       TEXT NOT NULL,
	submitter          TEXT NOT NULL DEFAULT '',
	integration_result TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS members (
	id        TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	rank      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_fields_form_order ON form_fields(form_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_submissions_form_time ON form_submissions(form_id, submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_members_name ON members(full_name);
`

// Store wraps a *sql.DB with form-engine operations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and returns a Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; serialize all access.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the schema. Run once at startup.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ── Forms ───────────────────────────────────────────────────────────────────

// CreateForm inserts an empty form and returns it.
func (s *Store) CreateForm(ctx context.Context, name, description string) (field.Form, error) {
	f := field.Form{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Fields:      []field.Definition{},
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forms (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.Description, f.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return field.Form{}, fmt.Errorf("creating form: %w", err)
	}
	return f, nil
}

// ErrNotFound marks lookups of missing rows.
var ErrNotFound = sql.ErrNoRows

// GetForm returns a form definition with its ordered fields.
func (s *Store) GetForm(ctx context.Context, id string) (field.Form, error) {
	var f field.Form
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM forms WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.Description, &createdAt)
	if err != nil {
		return field.Form{}, fmt.Errorf("loading form %s: %w", id, err)
	}
	f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	fields, err := s.loadFields(ctx, id)
	if err != nil {
		return field.Form{}, err
	}
	f.Fields = fields
	return f, nil
}

// ListForms returns all forms without their field lists, newest first.
func (s *Store) ListForms(ctx context.Context) ([]field.Form, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM forms ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer rows.Close()

	forms := []field.Form{}
	for rows.Next() {
		var f field.Form
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// DeleteForm removes a form and, via foreign keys, its fields and
// submissions.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting form %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting form %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Field rows ──────────────────────────────────────────────────────────────

const fieldCols = `id, label, field_type, placeholder, help_text, default_value,
	required, min_length, max_length, min_value, max_value,
	validation_pattern, options, sort_order, width`

func (s *Store) loadFields(ctx context.Context, formID string) ([]field.Definition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fieldCols+` FROM form_fields WHERE form_id = ? ORDER BY sort_order`, formID)
	if err != nil {
		return nil, fmt.Errorf("loading fields for form %s: %w", formID, err)
	}
	defer rows.Close()

	fields := []field.Definition{}
	for rows.Next() {
		def, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, def)
	}
	return fields, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (field.Definition, error) {
	var def field.Definition
	var required int
	var optionsJSON string
	err := row.Scan(
		&def.ID, &def.Label, &def.FieldType, &def.Placeholder, &def.HelpText,
		&def.DefaultValue, &required, &def.MinLength, &def.MaxLength,
		&def.MinValue, &def.MaxValue, &def.ValidationPattern, &optionsJSON,
		&def.SortOrder, &def.Width,
	)
	if err != nil {
		return field.Definition{}, fmt.Errorf("scanning field: %w", err)
	}
	def.Required = required != 0
	if optionsJSON != "" && optionsJSON != "[]" {
		// Malformed stored options degrade to none rather than failing.
		_ = json.Unmarshal([]byte(optionsJSON), &def.Options)
	}
	return def, nil
}

func (s *Store) insertField(ctx context.Context, tx *sql.Tx, formID string, def field.Definition) error {
	optionsJSON, err := json.Marshal(def.Options)
	if err != nil {
		return fmt.Errorf("encoding options: %w", err)
	}
	required := 0
	if def.Required {
		required = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO form_fields (
			id, form_id, label, field_type, placeholder, help_text, default_value,
			required, min_length, max_length, min_value, max_value,
			validation_pattern, options, sort_order, width
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, formID, def.Label, def.FieldType, def.Placeholder, def.HelpText,
		def.DefaultValue, required, def.MinLength, def.MaxLength, def.MinValue,
		def.MaxValue, def.ValidationPattern, string(optionsJSON), def.SortOrder,
		string(defWidth(def)),
	)
	if err != nil {
		return fmt.Errorf("inserting field: %w", err)
	}
	return nil
}

func defWidth(def field.Definition) field.Width {
	if def.Width == "" {
		return field.WidthFull
	}
	return def.Width
}

// ── Connected-mode FieldStore ───────────────────────────────────────────────

// FormFieldStore is the connected-mode builder.FieldStore bound to one
// form: ids and sort_order are server-assigned and every reorder is one
// transaction.
type FormFieldStore struct {
	s      *Store
	formID string
}

// FieldStore binds the store to a form id.
func (s *Store) FieldStore(formID string) *FormFieldStore {
	return &FormFieldStore{s: s, formID: formID}
}

func (fs *FormFieldStore) Load(ctx context.Context) ([]field.Definition, error) {
	return fs.s.loadFields(ctx, fs.formID)
}

func (fs *FormFieldStore) Add(ctx context.Context, def field.Definition) (field.Definition, error) {
	def.ID = uuid.NewString()
	err := fs.s.withTx(ctx, func(tx *sql.Tx) error {
		var next sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(sort_order) + 1 FROM form_fields WHERE form_id = ?`, fs.formID,
		).Scan(&next); err != nil {
			return fmt.Errorf("assigning sort order: %w", err)
		}
		def.SortOrder = int(next.Int64) // NULL → 0 for the first field
		return fs.s.insertField(ctx, tx, fs.formID, def)
	})
	if err != nil {
		return field.Definition{}, err
	}
	return def, nil
}

func (fs *FormFieldStore) Update(ctx context.Context, id string, def field.Definition) (field.Definition, error) {
	optionsJSON, err := json.Marshal(def.Options)
	if err != nil {
		return field.Definition{}, fmt.Errorf("encoding options: %w", err)
	}
	required := 0
	if def.Required {
		required = 1
	}
	res, err := fs.s.db.ExecContext(ctx, `
		UPDATE form_fields SET
			label = ?, field_type = ?, placeholder = ?, help_text = ?,
			default_value = ?, required = ?, min_length = ?, max_length = ?,
			min_value = ?, max_value = ?, validation_pattern = ?, options = ?,
			width = ?
		WHERE id = ? AND form_id = ?`,
		def.Label, def.FieldType, def.Placeholder, def.HelpText, def.DefaultValue,
		required, def.MinLength, def.MaxLength, def.MinValue, def.MaxValue,
		def.ValidationPattern, string(optionsJSON), string(defWidth(def)),
		id, fs.formID,
	)
	if err != nil {
		return field.Definition{}, fmt.Errorf("updating field %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return field.Definition{}, fmt.Errorf("updating field %s: %w", id, ErrNotFound)
	}
	def.ID = id
	return def, nil
}

func (fs *FormFieldStore) Delete(ctx context.Context, id string) error {
	return fs.s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM form_fields WHERE id = ? AND form_id = ?`, id, fs.formID)
		if err != nil {
			return fmt.Errorf("deleting field %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("deleting field %s: %w", id, ErrNotFound)
		}
		// Renumber densely so deletes never leave sort_order gaps.
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM form_fields WHERE form_id = ? ORDER BY sort_order`, fs.formID)
		if err != nil {
			return fmt.Errorf("renumbering fields: %w", err)
		}
		var ids []string
		for rows.Next() {
			var fid string
			if err := rows.Scan(&fid); err != nil {
				rows.Close()
				return fmt.Errorf("renumbering fields: %w", err)
			}
			ids = append(ids, fid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("renumbering fields: %w", err)
		}
		for i, fid := range ids {
			if _, err := tx.ExecContext(ctx,
				`UPDATE form_fields SET sort_order = ? WHERE id = ?`, i, fid); err != nil {
				return fmt.Errorf("renumbering field %s: %w", fid, err)
			}
		}
		return nil
	})
}

// SwapSortOrder exchanges the sort_order of two fields in one transaction,
// so a reorder can never be observed half-applied.
func (fs *FormFieldStore) SwapSortOrder(ctx context.Context, idA, idB string) error {
	return fs.s.withTx(ctx, func(tx *sql.Tx) error {
		orderOf := func(id string) (int, error) {
			var n int
			err := tx.QueryRowContext(ctx,
				`SELECT sort_order FROM form_fields WHERE id = ? AND form_id = ?`,
				id, fs.formID).Scan(&n)
			if err != nil {
				return 0, fmt.Errorf("loading sort order of %s: %w", id, err)
			}
			return n, nil
		}
		a, err := orderOf(idA)
		if err != nil {
			return err
		}
		b, err := orderOf(idB)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE form_fields SET sort_order = ? WHERE id = ?`, b, idA); err != nil {
			return fmt.Errorf("swapping sort order: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE form_fields SET sort_order = ? WHERE id = ?`, a, idB); err != nil {
			return fmt.Errorf("swapping sort order: %w", err)
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
