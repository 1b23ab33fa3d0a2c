package seqdb

import (
	"errors"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry pools open stores by name. A store is opened on first use and
// stays open until Close or CloseAll.
type Registry struct {
	opt Options

	// mu lets opens run concurrently but excludes them from closing.
	mu     sync.RWMutex
	stores *xsync.MapOf[string, *Store]
}

func NewRegistry(opt Options) *Registry {
	return &Registry{
		opt:    opt.withDefaults(),
		stores: xsync.NewMapOf[string, *Store](),
	}
}

func (r *Registry) Options() Options { return r.opt }

// Open returns a handle to the given collection of the given store, opening
// the store and creating the collection as needed.
func (r *Registry) Open(storeName, collectionName string) (*Collection, error) {
	if isBlank(storeName) {
		return nil, &MissingIdentifierError{"store name"}
	}
	if isBlank(collectionName) {
		return nil, &MissingIdentifierError{"collection name"}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.storeLocked(storeName)
	if err != nil {
		return nil, err
	}
	return s.Collection(collectionName)
}

// Store returns the pooled store of the given name, opening it if needed.
func (r *Registry) Store(name string) (*Store, error) {
	if isBlank(name) {
		return nil, &MissingIdentifierError{"store name"}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.storeLocked(name)
}

func (r *Registry) storeLocked(name string) (*Store, error) {
	var openErr error
	s, _ := r.stores.LoadOrTryCompute(name, func() (*Store, bool) {
		s, err := openStore(name, &r.opt)
		if err != nil {
			openErr = err
			return nil, true
		}
		return s, false
	})
	if openErr != nil {
		return nil, openErr
	}
	return s, nil
}

// Collections lists the collections of a store, opening it if needed.
func (r *Registry) Collections(storeName string) ([]string, error) {
	s, err := r.Store(storeName)
	if err != nil {
		return nil, err
	}
	return s.Collections()
}

// OpenStores returns the sorted names of the currently pooled stores.
func (r *Registry) OpenStores() []string {
	var names []string
	r.stores.Range(func(name string, _ *Store) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Close closes one pooled store. Closing a store that isn't open is a no-op.
func (r *Registry) Close(storeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores.LoadAndDelete(storeName)
	if !ok {
		return nil
	}
	return s.Close()
}

// CloseAll closes every pooled store and empties the pool. Later opens
// create fresh stores; handles obtained earlier keep failing with
// ErrStoreClosed.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	r.stores.Range(func(_ string, s *Store) bool {
		errs = append(errs, s.Close())
		return true
	})
	r.stores.Clear()
	return errors.Join(errs...)
}
