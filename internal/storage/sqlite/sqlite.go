// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The Record Store contract works on whole collections, so this backend
// stores a snapshot: one row per student plus a position column that
// keeps insertion order. SaveAll replaces every row inside a single
// transaction, which gives the same "last write wins" result as the flat
// file without the risk of a half-written collection.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	storage.Register("sqlite", func(path string) (storage.Storage, error) {
		return New(path)
	})
}

// SQLite is the concrete implementation of storage.Storage.
// *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path and creates the students table
// if it does not already exist.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   position   — index of the record in the collection (insertion order)
	//   id         — registry-assigned id; not a key here, since older
	//                JSON data may hold clock-based duplicates
	//   the rest   — the Student fields, one TEXT column each
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			position    INTEGER PRIMARY KEY,
			id          INTEGER NOT NULL,
			student_id  TEXT    NOT NULL,
			full_name   TEXT    NOT NULL,
			gender      TEXT    NOT NULL,
			gmail       TEXT    NOT NULL,
			program     TEXT    NOT NULL DEFAULT '',
			year_level  TEXT    NOT NULL DEFAULT '',
			university  TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// LoadAll returns every row ordered by position.
func (s *SQLite) LoadAll(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`SELECT id, student_id, full_name, gender, gmail, program, year_level, university
		 FROM students ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("LoadAll: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadAll: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the API encodes [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.StudentID,
			&student.FullName,
			&student.Gender,
			&student.Gmail,
			&student.Program,
			&student.YearLevel,
			&student.University,
		); err != nil {
			return nil, fmt.Errorf("LoadAll: %w: scan row: %v", storage.ErrUnreadable, err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadAll: rows iteration: %w", err)
	}

	return students, nil
}

// SaveAll replaces the stored collection in one transaction. If any
// insert fails the previous snapshot is left untouched.
func (s *SQLite) SaveAll(ctx context.Context, students []types.Student) (err error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveAll: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("SaveAll: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO students
		 (position, id, student_id, full_name, gender, gmail, program, year_level, university)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("SaveAll: prepare: %w", err)
	}
	defer stmt.Close()

	for i, st := range students {
		// Argument order matches the column list above.
		if _, err = stmt.ExecContext(ctx,
			i, st.ID, st.StudentID, st.FullName, st.Gender, st.Gmail,
			st.Program, st.YearLevel, st.University,
		); err != nil {
			return fmt.Errorf("SaveAll: insert position %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("SaveAll: commit: %w", err)
	}
	return nil
}
