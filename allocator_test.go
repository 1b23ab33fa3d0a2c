package seqdb

import (
	"errors"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

// patchBolt edits a closed store file directly, simulating crashes.
func patchBolt(t testing.TB, path, coll string, f func(b *bbolt.Bucket)) {
	t.Helper()
	bdb := must(bbolt.Open(path, 0o666, nil))
	defer bdb.Close()
	ensure(bdb.Update(func(btx *bbolt.Tx) error {
		f(btx.Bucket([]byte(coll)))
		return nil
	}))
}

func TestAllocator_counterBehindIsReconciled(t *testing.T) {
	reg := setup(t)
	c := open(t, reg, "s", "c")
	insert(t, c, Record{"val": "one"}, Record{"val": "two"}, Record{"val": "three"})
	ensure(reg.CloseAll())

	// batch committed, counter write lost
	path := filepath.Join(reg.Options().Dir, "s.db")
	patchBolt(t, path, "c", func(b *bbolt.Bucket) {
		ensure(b.Put(counterKey, MustEncodeKey(1)))
	})

	c = open(t, reg, "s", "c")
	deepEqual(t, c.LastID(), uint64(3))
	deepEqual(t, insert(t, c, Record{"val": "four"}), []uint64{4})
	deepEqual(t, vals(all(t, c, nil)), "one two three four")
}

func TestAllocator_counterAheadIsReconciled(t *testing.T) {
	reg := setup(t)
	c := open(t, reg, "s", "c")
	insert(t, c, Record{"val": "one"}, Record{"val": "two"})
	ensure(reg.CloseAll())

	// delete committed, recompute lost
	path := filepath.Join(reg.Options().Dir, "s.db")
	patchBolt(t, path, "c", func(b *bbolt.Bucket) {
		ensure(b.Delete(MustEncodeKey(2)))
	})

	c = open(t, reg, "s", "c")
	deepEqual(t, c.LastID(), uint64(1))
	deepEqual(t, must(c.Last()), Record{"_id": uint64(1), "val": "one"})
}

func TestAllocator_missingCounterIsCreated(t *testing.T) {
	reg := setup(t)
	c := open(t, reg, "s", "c")
	insert(t, c, Record{"val": "one"})
	ensure(reg.CloseAll())

	path := filepath.Join(reg.Options().Dir, "s.db")
	patchBolt(t, path, "c", func(b *bbolt.Bucket) {
		ensure(b.Delete(counterKey))
	})

	c = open(t, reg, "s", "c")
	deepEqual(t, c.LastID(), uint64(1))
}

func TestAllocator_corruptCounter(t *testing.T) {
	reg := setup(t)
	open(t, reg, "s", "c")
	ensure(reg.CloseAll())

	path := filepath.Join(reg.Options().Dir, "s.db")
	patchBolt(t, path, "c", func(b *bbolt.Bucket) {
		ensure(b.Put(counterKey, []byte("garbage")))
	})

	_, err := reg.Open("s", "c")
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, ErrEncodingRange) {
		t.Fatalf("Open err = %v, wanted ErrStoreUnavailable wrapping ErrEncodingRange", err)
	}

	// the failed collection is not cached, the store stays usable
	open(t, reg, "s", "other")
}

func TestAllocator_next(t *testing.T) {
	a := &allocator{}
	first, last := must2(a.next(3))
	deepEqual(t, [2]uint64{first, last}, [2]uint64{1, 3})

	a.counter.Store(MaxKey - 2)
	first, last = must2(a.next(2))
	deepEqual(t, [2]uint64{first, last}, [2]uint64{MaxKey - 1, MaxKey})

	_, _, err := a.next(3)
	if !errors.Is(err, ErrEncodingRange) {
		t.Fatalf("next past MaxKey err = %v, wanted ErrEncodingRange", err)
	}
	deepEqual(t, a.counter.Load(), uint64(MaxKey-2))
}

func TestAllocator_insertAtMaxKey(t *testing.T) {
	reg := setupMem(t)
	c := open(t, reg, "s", "c")
	ensure(c.alloc.advance(MaxKey - 1))

	deepEqual(t, insert(t, c, Record{"val": "last"}), []uint64{MaxKey})
	_, err := c.Insert(Record{"val": "overflow"})
	if !errors.Is(err, ErrEncodingRange) {
		t.Fatalf("Insert past MaxKey err = %v, wanted ErrEncodingRange", err)
	}
	deepEqual(t, c.LastID(), uint64(MaxKey))
}

func must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	if err != nil {
		panic(err)
	}
	return v1, v2
}
