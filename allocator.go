package seqdb

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// allocator hands out identifiers for one collection. The counter holds the
// largest allocated identifier, 0 meaning none; it is loaded once when the
// collection is first opened and persisted under counterKey.
//
// mu serializes all operations that move the counter.
type allocator struct {
	store *Store
	coll  string

	mu      sync.Mutex
	counter atomic.Uint64
}

func loadAllocator(s *Store, coll string) (*allocator, error) {
	a := &allocator{store: s, coll: coll}
	err := s.update("open", func(tx *storeTx) error {
		b, err := tx.stx.CreateBucket(coll)
		if err != nil {
			return storeErr(s.name, "open", err)
		}

		raw := b.Get(counterKey)
		var counter uint64
		if raw != nil {
			counter, err = DecodeKey(raw)
			if err != nil {
				return storeErr(s.name, "open", fmt.Errorf("counter of %s: %w", coll, err))
			}
		}

		// A crash between a batch and its counter write, or between a delete
		// and its recompute, leaves the counter off the largest live key.
		last, err := lastRecordKey(b, s.logger)
		if err != nil {
			return storeErr(s.name, "open", err)
		}
		if raw != nil && last != counter {
			staleCounters.Inc()
			s.logger.Warn("seqdb: stale counter reconciled", "collection", coll, "counter", counter, "last", last)
		}

		if raw == nil || last != counter {
			err := tx.put(b, counterKey, MustEncodeKey(last))
			if err != nil {
				return storeErr(s.name, "open", err)
			}
		}
		a.counter.Store(last)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.debugf("seqdb: collection opened", slog.String("collection", coll), slog.Uint64("counter", a.counter.Load()))
	return a, nil
}

// lastRecordKey returns the largest record key in b, or 0 if there are none.
func lastRecordKey(b storageBucket, logger *slog.Logger) (uint64, error) {
	rang := recordRange().Reversed()
	cur := rang.newCursor(b.Cursor(), logger)
	if !cur.Next() {
		return 0, nil
	}
	return DecodeKey(cur.Key())
}

// next returns the range of count identifiers following the counter,
// without moving it.
func (a *allocator) next(count int) (first, last uint64, err error) {
	c := a.counter.Load()
	n := uint64(count)
	if count <= 0 {
		return c + 1, c, nil
	}
	if n > MaxKey-c {
		return 0, 0, &EncodingRangeError{Value: c, Msg: fmt.Sprintf("cannot allocate %d more identifiers", count)}
	}
	return c + 1, c + n, nil
}

// advance persists newMax as the counter in its own transaction. The cached
// counter moves even if persisting fails, so that identifiers of an already
// committed batch are never handed out again.
func (a *allocator) advance(newMax uint64) error {
	a.counter.Store(newMax)
	return a.store.update("advance", func(tx *storeTx) error {
		b, err := tx.collectionBucket(a.coll)
		if err != nil {
			return storeErr(a.store.name, "advance", err)
		}
		if err := tx.put(b, counterKey, MustEncodeKey(newMax)); err != nil {
			return storeErr(a.store.name, "advance", err)
		}
		return nil
	})
}

// recomputeIn finds the largest live key and writes it as the counter in tx.
// The caller stores the returned value in the cache after tx commits.
func (a *allocator) recomputeIn(tx *storeTx, b storageBucket) (uint64, error) {
	last, err := lastRecordKey(b, a.store.logger)
	if err != nil {
		return 0, storeErr(a.store.name, "recompute", err)
	}
	if last != a.counter.Load() {
		if err := tx.put(b, counterKey, MustEncodeKey(last)); err != nil {
			return 0, storeErr(a.store.name, "recompute", err)
		}
	}
	recomputes.Inc()
	return last, nil
}

// recompute sets the counter to the largest live record key, or 0.
func (a *allocator) recompute() error {
	var last uint64
	err := a.store.update("recompute", func(tx *storeTx) error {
		b, err := tx.collectionBucket(a.coll)
		if err != nil {
			return storeErr(a.store.name, "recompute", err)
		}
		last, err = a.recomputeIn(tx, b)
		return err
	})
	if err != nil {
		return err
	}
	a.counter.Store(last)
	return nil
}
