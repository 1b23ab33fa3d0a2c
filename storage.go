package seqdb

// storage is an ordered key-value engine partitioned into top-level buckets.
// Each collection lives in its own bucket.
type storage interface {
	// BeginTx starts a new transaction. At most one writable transaction
	// is active at a time; others block until it finishes.
	BeginTx(writable bool) (storageTx, error)
	Close() error
}

type storageTx interface {
	Writable() bool

	// Bucket returns nil if the bucket doesn't exist.
	Bucket(name string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	// BucketNames lists bucket names in byte order.
	BucketNames() []string

	Commit() error

	// Rollback aborts the transaction. It is safe to call after Commit.
	Rollback() error

	// Size returns the database size in bytes (0 if unknown).
	Size() int64
}

// storageBucket is a sorted key-value collection. Slices returned by Get and
// by cursors are only valid until the transaction ends.
type storageBucket interface {
	// Get returns nil if not found.
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() storageCursor

	// Stats may return zero values except KeyN on backends that don't
	// track allocation sizes.
	Stats() bucketStats
}

type bucketStats struct {
	KeyN        int
	LeafInuse   int64
	LeafAlloc   int64
	BranchAlloc int64
}

func (s bucketStats) TotalAlloc() int64 { return s.BranchAlloc + s.LeafAlloc }

// storageCursor iterates over a sorted bucket. Every method returns nil key
// when it runs off either end.
type storageCursor interface {
	First() (key, value []byte)
	Last() (key, value []byte)

	// Seek moves to the first key >= seek.
	Seek(seek []byte) (key, value []byte)

	// SeekLast moves to the last key that is < the successor of prefix,
	// i.e. the last key having the prefix or sorting before it.
	SeekLast(prefix []byte) (key, value []byte)

	Next() (key, value []byte)
	Prev() (key, value []byte)
}
