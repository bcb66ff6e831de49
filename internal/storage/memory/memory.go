// Package memory provides an in-memory Record Store. Data is lost on
// restart; it exists for tests and for running the API without a disk.
package memory

import (
	"context"
	"sync"

	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/types"
)

func init() {
	storage.Register("memory", func(string) (storage.Storage, error) {
		return New(), nil
	})
}

// Store keeps the collection in a slice. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	students []types.Student

	saves int
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// NewWith returns a Store preloaded with students.
func NewWith(students ...types.Student) *Store {
	return &Store{students: clone(students)}
}

// Student has only value fields, so copying the slice is a deep copy.
func clone(src []types.Student) []types.Student {
	dst := make([]types.Student, len(src))
	copy(dst, src)
	return dst
}

func (s *Store) LoadAll(ctx context.Context) ([]types.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.students), nil
}

func (s *Store) SaveAll(ctx context.Context, students []types.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = clone(students)
	s.saves++
	return nil
}

// Saves reports how many times SaveAll succeeded. Tests use it to check
// that a rejected mutation did not touch the store.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
