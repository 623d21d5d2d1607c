package dataset

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Observer is notified exactly once, after the store's single load attempt.
type Observer func(path string, res *LoadResult, err error)

// Store holds the process-wide record set. The source is loaded at most once;
// concurrent first callers block until that load finishes, and a failed load
// stays failed for the life of the store.
type Store struct {
	path      string
	load      func(string) (*LoadResult, error)
	observers []Observer

	once   sync.Once
	res    *LoadResult
	err    error
	loaded atomic.Bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLoader replaces the file loader, mainly for tests.
func WithLoader(fn func(string) (*LoadResult, error)) StoreOption {
	return func(s *Store) { s.load = fn }
}

// WithObserver registers a callback run after the load attempt.
func WithObserver(fn Observer) StoreOption {
	return func(s *Store) { s.observers = append(s.observers, fn) }
}

// NewStore returns a store that will load path on first use.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path, load: Load}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStaticStore returns an already-loaded store over records.
func NewStaticStore(records []Record) *Store {
	s := &Store{path: "memory"}
	s.once.Do(func() {
		s.res = &LoadResult{Records: records, Total: len(records), LoadedAt: time.Now().UTC()}
		s.loaded.Store(true)
	})
	return s
}

// Path returns the source path.
func (s *Store) Path() string { return s.path }

// Ensure triggers the load if it has not happened yet and returns its error.
func (s *Store) Ensure() error {
	s.once.Do(func() {
		s.res, s.err = s.safeLoad()
		if s.err == nil {
			s.loaded.Store(true)
		}
		for _, fn := range s.observers {
			fn(s.path, s.res, s.err)
		}
	})
	return s.err
}

// safeLoad runs the loader, turning a panic or a nil result into a LoadError
// so the store never settles into a loaded state without records.
func (s *Store) safeLoad() (res *LoadResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &LoadError{Path: s.path, Err: fmt.Errorf("loader panic: %v", r)}
		}
	}()
	res, err = s.load(s.path)
	if err == nil && res == nil {
		err = &LoadError{Path: s.path, Err: ErrNoRows}
	}
	return res, err
}

// Records returns the loaded records, loading them if needed. The slice is
// shared and must not be modified.
func (s *Store) Records() ([]Record, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.res.Records, nil
}

// Result returns the full load result.
func (s *Store) Result() (*LoadResult, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.res, nil
}

// Loaded reports whether records are available without triggering a load.
func (s *Store) Loaded() bool { return s.loaded.Load() }
