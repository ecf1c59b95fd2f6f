package btrieve

import (
	"sync"

	"github.com/joshuapare/btrievekit/internal/sqlstore"
)

// sharedStore reference-counts a single *sqlstore.Store across every
// Handle opened against the same canonical path (spec.md §4.I
// "openedFilename"; §5 "Shared resources").
type sharedStore struct {
	store    *sqlstore.Store
	refCount int
}

var (
	registryMu sync.Mutex
	registry   = map[string]*sharedStore{}
)

// acquireStore opens path if it isn't already open, otherwise returns
// the existing shared store with its reference count bumped.
func acquireStore(path string) (*sqlstore.Store, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if s, ok := registry[path]; ok {
		s.refCount++
		return s.store, nil
	}
	store, err := sqlstore.Open(path)
	if err != nil {
		return nil, err
	}
	registry[path] = &sharedStore{store: store, refCount: 1}
	return store, nil
}

// releaseStore drops one reference to path's shared store, closing it
// once the last handle releases it.
func releaseStore(path string) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	s, ok := registry[path]
	if !ok {
		return nil
	}
	s.refCount--
	if s.refCount > 0 {
		return nil
	}
	delete(registry, path)
	return s.store.Close()
}

// stopAll closes every open store process-wide (spec.md §6, operation
// 0x19 "Stop").
func stopAll() error {
	registryMu.Lock()
	defer registryMu.Unlock()

	var firstErr error
	for path, s := range registry {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(registry, path)
	}
	return firstErr
}
