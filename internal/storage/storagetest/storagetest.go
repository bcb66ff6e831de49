// Package storagetest is a conformance suite every storage.Storage
// backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/types"
)

// Fixture is a small collection with every field populated on at least
// one record and deliberately unsorted ids.
func Fixture() []types.Student {
	return []types.Student{
		{ID: 30, StudentID: "S-003", FullName: "Maria Santos", Gender: "Female", Gmail: "maria@gmail.com", Program: "BSIT", YearLevel: "2nd Year", University: "PUP"},
		{ID: 10, StudentID: "S-001", FullName: "Juan Dela Cruz", Gender: "Male", Gmail: "juan@gmail.com", Program: "BSCS", YearLevel: "1st Year", University: "UP"},
		{ID: 20, StudentID: "S-002", FullName: "Ana Reyes", Gender: "female", Gmail: "ana@gmail.com"},
	}
}

// Run exercises s. open must return a fresh, empty backend on each call.
func Run(t *testing.T, open func(t *testing.T) storage.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadAll empty", func(t *testing.T) {
		s := open(t)
		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("SaveAll then LoadAll keeps order and fields", func(t *testing.T) {
		s := open(t)
		want := Fixture()
		require.NoError(t, s.SaveAll(ctx, want))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("SaveAll replaces previous collection", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveAll(ctx, Fixture()))

		next := Fixture()[1:2]
		require.NoError(t, s.SaveAll(ctx, next))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})

	t.Run("SaveAll nil stores empty collection", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveAll(ctx, Fixture()))
		require.NoError(t, s.SaveAll(ctx, nil))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("LoadAll returns a copy", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveAll(ctx, Fixture()))

		first, err := s.LoadAll(ctx)
		require.NoError(t, err)
		first[0].FullName = "changed"

		second, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Maria Santos", second[0].FullName)
	})

	t.Run("round trip is stable", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveAll(ctx, Fixture()))

		loaded, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.NoError(t, s.SaveAll(ctx, loaded))

		again, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, loaded, again)
	})
}
