package seqdb

import (
	"fmt"
	"runtime/debug"
)

// storeTx wraps an engine transaction with the store it belongs to and the
// value buffers that must stay alive until it ends.
type storeTx struct {
	store   *Store
	stx     storageTx
	written bool

	valueBufs [][]byte
}

func (tx *storeTx) bucket(name string) storageBucket {
	return tx.stx.Bucket(name)
}

// collectionBucket returns the bucket of an opened collection.
func (tx *storeTx) collectionBucket(name string) (storageBucket, error) {
	b := tx.stx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("collection %q is missing", name)
	}
	return b, nil
}

func (tx *storeTx) put(b storageBucket, key, val []byte) error {
	tx.written = true
	return b.Put(key, val)
}

func (tx *storeTx) delete(b storageBucket, key []byte) error {
	tx.written = true
	return b.Delete(key)
}

// encodeRecord encodes rec into a pooled buffer released when tx ends.
func (tx *storeTx) encodeRecord(rec Record) ([]byte, error) {
	buf := valueBytesPool.Get().([]byte)
	buf, err := appendValue(buf[:0], tx.store.enc, rec.payload())
	if err != nil {
		releaseValueBytes(buf)
		return nil, err
	}
	if tx.valueBufs == nil {
		tx.valueBufs = arrayOfBytesPool.Get().([][]byte)
	}
	tx.valueBufs = append(tx.valueBufs, buf)
	return buf, nil
}

func (tx *storeTx) release() {
	if tx.valueBufs != nil {
		for i, buf := range tx.valueBufs {
			releaseValueBytes(buf)
			tx.valueBufs[i] = nil
		}
		arrayOfBytesPool.Put(tx.valueBufs[:0])
		tx.valueBufs = nil
	}
}

// view runs f in a read-only transaction.
func (s *Store) view(op string, f func(tx *storeTx) error) error {
	stx, err := s.begin(op, false)
	if err != nil {
		return err
	}
	tx := &storeTx{store: s, stx: stx}
	defer func() {
		_ = stx.Rollback()
		tx.release()
	}()
	return safelyCall(f, tx)
}

// update runs f in a writable transaction and commits it if f succeeds and
// has written anything. Engine failures are reported as StoreUnavailableError;
// errors returned by f are passed through.
func (s *Store) update(op string, f func(tx *storeTx) error) error {
	stx, err := s.begin(op, true)
	if err != nil {
		return err
	}
	tx := &storeTx{store: s, stx: stx}
	defer func() {
		_ = stx.Rollback()
		tx.release()
	}()
	err = safelyCall(f, tx)
	if err != nil {
		return err
	}
	if !tx.written {
		return nil
	}
	if err := stx.Commit(); err != nil {
		return storeErr(s.name, op, err)
	}
	s.writeCount.Add(1)
	return nil
}

func (s *Store) begin(op string, writable bool) (storageTx, error) {
	if s.closed.Load() {
		return nil, storeErr(s.name, op, ErrStoreClosed)
	}
	stx, err := s.db.BeginTx(writable)
	if err != nil {
		if s.closed.Load() {
			err = ErrStoreClosed
		}
		return nil, storeErr(s.name, op, err)
	}
	return stx, nil
}

type panicked struct {
	reason interface{}
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*storeTx) error, tx *storeTx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}
