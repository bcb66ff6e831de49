// Package registry is the Mutation Service: it owns the
// load-mutate-save cycle over the Record Store.
//
// Every mutation runs under one mutex, so two concurrent adds both land
// in the stored collection instead of one overwriting the other. Reads
// do not take the lock; the store itself guarantees they see a whole
// collection.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-records/internal/query"
	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/types"
)

var (
	// ErrValidation is returned by Add when a required field is missing.
	// The error also wraps validator.ValidationErrors with per-field detail.
	ErrValidation = errors.New("missing required fields")

	// ErrNotFound is returned by Remove when no record has the given id.
	ErrNotFound = errors.New("student not found")
)

// Observer is told about successful mutations. The metrics package
// implements it.
type Observer interface {
	StudentCreated()
	StudentDeleted()
}

type nopObserver struct{}

func (nopObserver) StudentCreated() {}
func (nopObserver) StudentDeleted() {}

// Option customises a Service.
type Option func(*Service)

// WithObserver registers o for mutation events.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// Service lists, adds, and removes students.
type Service struct {
	store    storage.Storage
	log      *slog.Logger
	validate *validator.Validate
	ids      *IDGenerator
	observer Observer

	// writeMu serialises load-mutate-save cycles.
	writeMu sync.Mutex
}

// New returns a Service over store.
func New(store storage.Storage, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		log:      log,
		validate: newValidator(),
		ids:      NewIDGenerator(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newValidator reports fields by their JSON names ("fullName") so
// messages match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// List loads the collection and applies c.
func (s *Service) List(ctx context.Context, c types.Criteria) ([]types.Student, error) {
	students, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry.List: %w", err)
	}
	return query.Filter(students, c), nil
}

// Students returns the full, unfiltered collection.
func (s *Service) Students(ctx context.Context) ([]types.Student, error) {
	return s.List(ctx, types.Criteria{})
}

// Add validates candidate, assigns it a fresh id, and appends it. Any id
// set by the caller is ignored.
func (s *Service) Add(ctx context.Context, candidate types.Student) (types.Student, error) {
	if err := s.validate.Struct(candidate); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return types.Student{}, fmt.Errorf("%w: %w", ErrValidation, verrs)
		}
		return types.Student{}, fmt.Errorf("registry.Add: validate: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	students, err := s.store.LoadAll(ctx)
	if err != nil {
		return types.Student{}, fmt.Errorf("registry.Add: %w", err)
	}

	candidate.ID = s.ids.Next(maxID(students))
	students = append(students, candidate)

	if err := s.store.SaveAll(ctx, students); err != nil {
		return types.Student{}, fmt.Errorf("registry.Add: %w", err)
	}

	s.observer.StudentCreated()
	s.log.Debug("student stored", slog.Int64("id", candidate.ID), slog.Int("total", len(students)))
	return candidate, nil
}

// Remove deletes every record whose id equals rawID. The id arrives as
// text from the URL path and matches numerically, so "1", "01", "1.0"
// and "1e0" all name id 1. Anything else yields ErrNotFound.
func (s *Service) Remove(ctx context.Context, rawID string) error {
	id, ok := parseID(rawID)
	if !ok {
		return fmt.Errorf("%w: id %q", ErrNotFound, rawID)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	students, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("registry.Remove: %w", err)
	}

	kept := make([]types.Student, 0, len(students))
	for _, st := range students {
		if st.ID != id {
			kept = append(kept, st)
		}
	}

	if len(kept) == len(students) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err := s.store.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("registry.Remove: %w", err)
	}

	s.observer.StudentDeleted()
	return nil
}

// parseID accepts base-10 integers and any float literal that is a
// whole number within int64 range.
func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func maxID(students []types.Student) int64 {
	var m int64
	for _, st := range students {
		if st.ID > m {
			m = st.ID
		}
	}
	return m
}
