package seqdb

import (
	"bytes"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/google/btree"
)

const memTreeDegree = 32

var (
	errMemClosed      = errors.New("storage closed")
	errMemNotWritable = errors.New("tx not writable")
)

type memKV struct {
	key   []byte
	value []byte
}

func memLess(a, b memKV) bool {
	return bytes.Compare(a.key, b.key) < 0
}

type memTree = btree.BTreeG[memKV]

// memStorage is a transient engine kept in copy-on-write B-trees. Every
// transaction works on clones of the trees, so readers see a stable snapshot
// and a rolled back writer leaves no trace.
type memStorage struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buckets map[string]*memTree
	closed  bool
	writer  bool
}

func newMemStorage() storage {
	s := &memStorage{buckets: make(map[string]*memTree)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errMemClosed
	}
	if writable {
		for s.writer && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			return nil, errMemClosed
		}
		s.writer = true
	}

	snap := make(map[string]*memTree, len(s.buckets))
	for k, t := range s.buckets {
		snap[k] = t.Clone()
	}
	return &memTx{
		base:     s,
		writable: writable,
		buckets:  snap,
	}, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buckets = nil
	s.cond.Broadcast()
	return nil
}

type memTx struct {
	base     *memStorage
	writable bool
	buckets  map[string]*memTree
	closed   bool
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) closeLocked() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.writable {
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
}

func (tx *memTx) Bucket(name string) storageBucket {
	if tx.closed {
		panic("tx is closed")
	}
	t := tx.buckets[name]
	if t == nil {
		return nil
	}
	return memBucket{tx: tx, t: t}
}

func (tx *memTx) CreateBucket(name string) (storageBucket, error) {
	if tx.closed {
		panic("tx is closed")
	}
	if !tx.writable {
		return nil, errMemNotWritable
	}
	t := tx.buckets[name]
	if t == nil {
		t = btree.NewG(memTreeDegree, memLess)
		tx.buckets[name] = t
	}
	return memBucket{tx: tx, t: t}, nil
}

func (tx *memTx) BucketNames() []string {
	names := make([]string, 0, len(tx.buckets))
	for name := range tx.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (tx *memTx) Commit() error {
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	if tx.closed {
		return nil
	}
	if !tx.writable {
		tx.closeLocked()
		return errMemNotWritable
	}
	if tx.base.closed {
		tx.closeLocked()
		return errMemClosed
	}
	tx.base.buckets = tx.buckets
	tx.closeLocked()
	return nil
}

func (tx *memTx) Rollback() error {
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	tx.closeLocked()
	return nil
}

func (tx *memTx) Size() int64 { return 0 }

type memBucket struct {
	tx *memTx
	t  *memTree
}

func (b memBucket) Get(key []byte) []byte {
	kv, ok := b.t.Get(memKV{key: key})
	if !ok {
		return nil
	}
	return kv.value
}

func (b memBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return errMemNotWritable
	}
	b.t.ReplaceOrInsert(memKV{key: slices.Clone(key), value: slices.Clone(value)})
	return nil
}

func (b memBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return errMemNotWritable
	}
	b.t.Delete(memKV{key: key})
	return nil
}

func (b memBucket) Cursor() storageCursor {
	return &memCursor{t: b.t}
}

func (b memBucket) Stats() bucketStats {
	var inuse int64
	b.t.Ascend(func(kv memKV) bool {
		inuse += int64(len(kv.key) + len(kv.value))
		return true
	})
	return bucketStats{
		KeyN:      b.t.Len(),
		LeafInuse: inuse,
		LeafAlloc: inuse,
	}
}

// memCursor remembers the current key and re-seeks the tree on every move.
type memCursor struct {
	t   *memTree
	cur memKV
	ok  bool
}

func (c *memCursor) set(kv memKV, ok bool) ([]byte, []byte) {
	c.cur, c.ok = kv, ok
	if !ok {
		return nil, nil
	}
	return kv.key, kv.value
}

func (c *memCursor) First() ([]byte, []byte) {
	return c.set(c.t.Min())
}

func (c *memCursor) Last() ([]byte, []byte) {
	return c.set(c.t.Max())
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte) {
	var found memKV
	var ok bool
	c.t.AscendGreaterOrEqual(memKV{key: seek}, func(kv memKV) bool {
		found, ok = kv, true
		return false
	})
	return c.set(found, ok)
}

func (c *memCursor) SeekLast(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return c.Last()
	}
	limit := append([]byte(nil), prefix...)
	if !inc(limit) {
		return c.Last()
	}
	var found memKV
	var ok bool
	c.t.DescendLessOrEqual(memKV{key: limit}, func(kv memKV) bool {
		if bytes.Equal(kv.key, limit) {
			return true
		}
		found, ok = kv, true
		return false
	})
	return c.set(found, ok)
}

func (c *memCursor) Next() ([]byte, []byte) {
	if !c.ok {
		return nil, nil
	}
	var found memKV
	var ok bool
	c.t.AscendGreaterOrEqual(c.cur, func(kv memKV) bool {
		if bytes.Equal(kv.key, c.cur.key) {
			return true
		}
		found, ok = kv, true
		return false
	})
	return c.set(found, ok)
}

func (c *memCursor) Prev() ([]byte, []byte) {
	if !c.ok {
		return nil, nil
	}
	var found memKV
	var ok bool
	c.t.DescendLessOrEqual(c.cur, func(kv memKV) bool {
		if bytes.Equal(kv.key, c.cur.key) {
			return true
		}
		found, ok = kv, true
		return false
	})
	return c.set(found, ok)
}
