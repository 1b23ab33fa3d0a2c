package seqdb

import (
	"fmt"
	"io"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeaders = DumpFlags(1 << iota)
	DumpRecords
	DumpStats
	DumpRaw

	DumpAll = DumpHeaders | DumpRecords | DumpStats
)

var dumpSep = strings.Repeat("=", 80)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump writes a human-readable listing of every collection of the store.
func (s *Store) Dump(w io.Writer, f DumpFlags) error {
	names, err := s.Collections()
	if err != nil {
		return err
	}
	for _, name := range names {
		c, err := s.Collection(name)
		if err != nil {
			return err
		}
		if err := c.Dump(w, f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) Dump(w io.Writer, f DumpFlags) error {
	prefix := c.name
	if f.Contains(DumpHeaders) || f.Contains(DumpStats) {
		st, err := c.Stats()
		if err != nil {
			return err
		}
		if f.Contains(DumpHeaders) {
			fmt.Fprintln(w, dumpSep)
			fmt.Fprintf(w, "%s (%d records, counter %d)\n", prefix, st.Records, st.Counter)
		}
		if f.Contains(DumpStats) {
			fmt.Fprintf(w, "%s.stats: data_size = %d, data_alloc = %d\n", prefix, st.DataSize, st.DataAlloc)
		}
	}

	if f.Contains(DumpRaw) {
		err := c.store.view("dump", func(tx *storeTx) error {
			b, err := tx.collectionBucket(c.name)
			if err != nil {
				return storeErr(c.store.name, "dump", err)
			}
			rang := RawOO()
			cur := rang.newCursor(b.Cursor(), c.store.logger)
			for cur.Next() {
				var vle value
				if isRecordKey(cur.Key()) {
					if err := vle.decode(cur.Value()); err != nil {
						fmt.Fprintf(w, "%s.%s = ** ERROR: %v\n", prefix, hexstr(cur.Key()), err)
						continue
					}
					fmt.Fprintf(w, "%s.%s = %v\n", prefix, hexstr(cur.Key()), vle)
				} else {
					fmt.Fprintf(w, "%s.%q = %s\n", prefix, cur.Key(), hexstr(cur.Value()))
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if f.Contains(DumpRecords) {
		return c.Scan(nil, func(rec Record) bool {
			id, _ := rec.ID()
			fmt.Fprintf(w, "%s.%d = %s\n", prefix, id, loggableRecord(rec.payload()))
			return true
		})
	}
	return nil
}
