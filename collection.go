package seqdb

import (
	"log/slog"
	"time"
)

// Collection is a handle to an ordered collection of records with
// auto-incrementing identifiers. Handles are cheap, safe for concurrent use,
// and share state with every other handle of the same collection.
type Collection struct {
	store *Store
	name  string
	alloc *allocator
}

func (c *Collection) Name() string  { return c.name }
func (c *Collection) Store() *Store { return c.store }

// LastID returns the largest allocated identifier, 0 if none.
func (c *Collection) LastID() uint64 {
	return c.alloc.counter.Load()
}

// Insert stores items under consecutive new identifiers and returns how many
// were inserted.
func (c *Collection) Insert(items ...Record) (int, error) {
	ids, err := c.InsertIDs(items...)
	return len(ids), err
}

// InsertIDs is like Insert, but returns the allocated identifiers.
//
// All items are written in one transaction; the counter is persisted in a
// second one after it commits. If only the second one fails, the records are
// stored and both the identifiers and the error are returned.
func (c *Collection) InsertIDs(items ...Record) (ids []uint64, err error) {
	if len(items) == 0 {
		return nil, nil
	}
	defer observe("insert", time.Now(), &err)

	a := c.alloc
	a.mu.Lock()
	defer a.mu.Unlock()

	first, last, err := a.next(len(items))
	if err != nil {
		return nil, err
	}

	err = c.store.update("insert", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "insert", err)
		}
		for i, item := range items {
			key := MustEncodeKey(first + uint64(i))
			val, err := tx.encodeRecord(item)
			if err != nil {
				return err
			}
			if err := tx.put(b, key, val); err != nil {
				return storeErr(c.store.name, "insert", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	insertedRecords.Add(len(items))

	ids = make([]uint64, 0, len(items))
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}
	c.store.debugf("seqdb: inserted", slog.String("collection", c.name), slog.Uint64("first", first), slog.Uint64("last", last))

	return ids, a.advance(last)
}

// Get returns the record with the given identifier, or NotFoundError.
func (c *Collection) Get(id uint64) (rec Record, err error) {
	defer observe("get", time.Now(), &err)
	key, err := EncodeKey(id)
	if err != nil {
		return nil, err
	}
	err = c.store.view("get", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "get", err)
		}
		raw := b.Get(key)
		if raw == nil {
			return &NotFoundError{c.store.name, c.name, id}
		}
		rec, err = decodeValue(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec.withID(id), nil
}

// Last returns the record with the largest identifier, or nil if the
// collection is empty.
func (c *Collection) Last() (Record, error) {
	if c.store.IsClosed() {
		return nil, storeErr(c.store.name, "last", ErrStoreClosed)
	}
	a := c.alloc
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.counter.Load()
	if id == 0 {
		return nil, nil
	}
	return c.Get(id)
}

// All returns the records matching pred in identifier order. A nil pred
// matches everything.
func (c *Collection) All(pred Predicate) ([]Record, error) {
	var result []Record
	err := c.Scan(pred, func(rec Record) bool {
		result = append(result, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Scan calls fn for every record matching pred in identifier order until fn
// returns false. fn runs inside a read transaction and must not modify the store.
func (c *Collection) Scan(pred Predicate, fn func(Record) bool) (err error) {
	defer observe("scan", time.Now(), &err)
	return c.store.view("scan", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "scan", err)
		}
		rang := recordRange()
		cur := rang.newCursor(b.Cursor(), c.store.logger)
		for cur.Next() {
			id, err := DecodeKey(cur.Key())
			if err != nil {
				return err
			}
			rec, err := decodeValue(cur.Value())
			if err != nil {
				return err
			}
			rec = rec.withID(id)
			if pred != nil && !pred(rec) {
				continue
			}
			if !fn(rec) {
				break
			}
		}
		return nil
	})
}

// Count returns the number of records.
func (c *Collection) Count() (n int, err error) {
	err = c.store.view("count", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "count", err)
		}
		rang := recordRange()
		cur := rang.newCursor(b.Cursor(), c.store.logger)
		for cur.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Update shallow-merges partial into the stored record. IDField is ignored.
func (c *Collection) Update(id uint64, partial Record) (err error) {
	defer observe("update", time.Now(), &err)
	key, err := EncodeKey(id)
	if err != nil {
		return err
	}
	return c.store.update("update", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "update", err)
		}
		raw := b.Get(key)
		if raw == nil {
			return &NotFoundError{c.store.name, c.name, id}
		}
		rec, err := decodeValue(raw)
		if err != nil {
			return err
		}
		val, err := tx.encodeRecord(rec.merge(partial))
		if err != nil {
			return err
		}
		if err := tx.put(b, key, val); err != nil {
			return storeErr(c.store.name, "update", err)
		}
		return nil
	})
}

// Delete removes the record with the given identifier. Deleting a missing
// record is not an error. If id is the counter, the counter falls back to the
// largest remaining identifier in the same transaction.
func (c *Collection) Delete(id uint64) (err error) {
	defer observe("delete", time.Now(), &err)
	key, err := EncodeKey(id)
	if err != nil {
		return err
	}

	a := c.alloc
	a.mu.Lock()
	defer a.mu.Unlock()

	newMax, recomputed, deleted := uint64(0), false, false
	err = c.store.update("delete", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "delete", err)
		}
		if b.Get(key) != nil {
			if err := tx.delete(b, key); err != nil {
				return storeErr(c.store.name, "delete", err)
			}
			deleted = true
		}
		// also when the record is already gone, so a stale counter heals
		if id == a.counter.Load() {
			newMax, err = a.recomputeIn(tx, b)
			recomputed = err == nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if deleted {
		deletedRecords.Inc()
	}
	if recomputed {
		a.counter.Store(newMax)
		c.store.debugf("seqdb: counter recomputed", slog.String("collection", c.name), slog.Uint64("counter", newMax))
	}
	return nil
}

// DeleteBy removes every record matching pred and returns how many were
// removed. When nothing matches, nothing is written.
func (c *Collection) DeleteBy(pred Predicate) (n int, err error) {
	defer observe("delete_by", time.Now(), &err)

	a := c.alloc
	a.mu.Lock()
	defer a.mu.Unlock()

	newMax, recomputed := uint64(0), false
	err = c.store.update("delete_by", func(tx *storeTx) error {
		n = 0
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "delete_by", err)
		}

		var keys [][]byte
		var hitsCounter bool
		counter := a.counter.Load()
		rang := recordRange()
		cur := rang.newCursor(b.Cursor(), c.store.logger)
		for cur.Next() {
			id, err := DecodeKey(cur.Key())
			if err != nil {
				return err
			}
			rec, err := decodeValue(cur.Value())
			if err != nil {
				return err
			}
			if pred != nil && !pred(rec.withID(id)) {
				continue
			}
			keys = append(keys, append([]byte(nil), cur.Key()...))
			if id == counter {
				hitsCounter = true
			}
		}
		if len(keys) == 0 {
			return nil
		}

		for _, key := range keys {
			if err := tx.delete(b, key); err != nil {
				return storeErr(c.store.name, "delete_by", err)
			}
		}
		n = len(keys)
		if hitsCounter {
			newMax, err = a.recomputeIn(tx, b)
			recomputed = err == nil
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	deletedRecords.Add(n)
	if recomputed {
		a.counter.Store(newMax)
	}
	c.store.debugf("seqdb: deleted by predicate", slog.String("collection", c.name), slog.Int("count", n))
	return n, nil
}

// Recompute resets the counter to the largest live identifier, or 0 if the
// collection is empty.
func (c *Collection) Recompute() (err error) {
	defer observe("recompute", time.Now(), &err)
	a := c.alloc
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recompute()
}
