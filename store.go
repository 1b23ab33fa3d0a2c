package seqdb

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

var errInvalidStoreName = errors.New("store name must not contain path separators")

// Store is one physical database. Every collection of the store is a
// top-level bucket of its own.
type Store struct {
	name    string
	path    string
	db      storage
	enc     Encoding
	logger  *slog.Logger
	verbose bool

	closed     atomic.Bool
	writeCount atomic.Uint64

	allocs *xsync.MapOf[string, *allocator]
}

func openStore(name string, opt *Options) (*Store, error) {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, storeErr(name, "open", errInvalidStoreName)
	}
	path := opt.storePath(name)
	if opt.Engine == EngineMemory {
		path = ""
	}
	db, err := openStorage(path, opt)
	if err != nil {
		return nil, storeErr(name, "open", err)
	}
	s := &Store{
		name:    name,
		path:    path,
		db:      db,
		enc:     opt.Encoding,
		logger:  opt.Logger.With("store", name),
		verbose: opt.Verbose,
		allocs:  xsync.NewMapOf[string, *allocator](),
	}
	openStores.Add(1)
	if s.verbose {
		s.logger.Debug("seqdb: store opened", "path", path)
	}
	return s, nil
}

func (s *Store) Name() string { return s.name }

// Path is the database file, or "" for an in-memory store.
func (s *Store) Path() string { return s.path }

func (s *Store) IsClosed() bool { return s.closed.Load() }

// WriteCount is the number of committed write transactions since opening.
func (s *Store) WriteCount() uint64 { return s.writeCount.Load() }

// Close closes the underlying engine. Collections of a closed store fail
// every operation with ErrStoreClosed. Closing twice is a no-op.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	openStores.Add(-1)
	err := s.db.Close()
	if s.verbose {
		s.logger.Debug("seqdb: store closed", "err", err)
	}
	if err != nil {
		return storeErr(s.name, "close", err)
	}
	return nil
}

// Collection opens a collection of this store, creating it on first use.
// Handles of the same collection share their counter.
func (s *Store) Collection(name string) (*Collection, error) {
	if isBlank(name) {
		return nil, &MissingIdentifierError{"collection name"}
	}
	var openErr error
	a, _ := s.allocs.LoadOrTryCompute(name, func() (*allocator, bool) {
		a, err := loadAllocator(s, name)
		if err != nil {
			openErr = err
			return nil, true
		}
		return a, false
	})
	if openErr != nil {
		return nil, openErr
	}
	return &Collection{store: s, name: name, alloc: a}, nil
}

// Collections lists the collections ever created in the store, sorted.
func (s *Store) Collections() ([]string, error) {
	var names []string
	err := s.view("collections", func(tx *storeTx) error {
		names = tx.stx.BucketNames()
		return nil
	})
	return names, err
}

// Size returns the database size in bytes, or 0 for in-memory stores.
func (s *Store) Size() (int64, error) {
	var size int64
	err := s.view("size", func(tx *storeTx) error {
		size = tx.stx.Size()
		return nil
	})
	return size, err
}

func (s *Store) debugf(msg string, attrs ...slog.Attr) {
	if s.verbose {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}
