// Package jsonfile is the default Record Store: the whole collection
// lives in a single JSON array file.
//
// Layout on disk (two-space indented, one object per record):
//
//	[
//	  {
//	    "id": 1718000000000,
//	    "studentID": "2024-0001",
//	    ...
//	  }
//	]
//
// Writes go to a sibling temp file which is then renamed over the target,
// so a reader sees either the previous or the new collection, never a
// truncated one.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/types"
)

func init() {
	storage.Register("json", func(path string) (storage.Storage, error) {
		return New(path)
	})
}

// Store is a storage.Storage backed by one JSON file.
type Store struct {
	mu   sync.RWMutex
	path string
}

// New returns a Store for path, creating its parent directory if needed.
// The file itself is created on the first SaveAll.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile.New: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile.New: create dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) LoadAll(ctx context.Context) ([]types.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Student{}, nil
		}
		return nil, fmt.Errorf("jsonfile.LoadAll: read %s: %w", s.path, err)
	}

	var students []types.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("jsonfile.LoadAll: %w: %s: %v", storage.ErrUnreadable, s.path, err)
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

func (s *Store) SaveAll(ctx context.Context, students []types.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if students == nil {
		// The file must always hold an array, never "null".
		students = []types.Student{}
	}

	data, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile.SaveAll: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonfile.SaveAll: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Removing after a successful rename is a harmless no-op.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile.SaveAll: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile.SaveAll: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile.SaveAll: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("jsonfile.SaveAll: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("jsonfile.SaveAll: rename: %w", err)
	}
	return nil
}
