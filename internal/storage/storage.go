// Package storage defines the Record Store contract: the whole student
// collection is loaded and saved as one unit.
//
// Handlers and services depend only on this interface, so the flat-file
// backend, the SQLite backend, and the in-memory test double are
// interchangeable. See New in factory.go for how one is chosen.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/students-records/internal/types"
)

// ErrUnreadable is wrapped by LoadAll when the backing store exists but
// its contents cannot be decoded into a student collection.
var ErrUnreadable = errors.New("storage: backing data unreadable")

// Storage is the Record Store contract.
type Storage interface {
	// LoadAll returns the full collection in insertion order. A store
	// that has never been written returns an empty, non-nil slice.
	LoadAll(ctx context.Context) ([]types.Student, error)

	// SaveAll replaces the full collection with students.
	SaveAll(ctx context.Context, students []types.Student) error
}
