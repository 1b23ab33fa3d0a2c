package seqdb

import (
	"encoding/json"
)

type CollectionStats struct {
	Records int
	Counter uint64

	DataSize  int64
	DataAlloc int64
}

// Stats reports the size of the collection. Records excludes the counter entry.
func (c *Collection) Stats() (CollectionStats, error) {
	var result CollectionStats
	err := c.store.view("stats", func(tx *storeTx) error {
		b, err := tx.collectionBucket(c.name)
		if err != nil {
			return storeErr(c.store.name, "stats", err)
		}
		bs := b.Stats()
		result = CollectionStats{
			Records:   bs.KeyN,
			Counter:   c.alloc.counter.Load(),
			DataSize:  bs.LeafInuse,
			DataAlloc: bs.TotalAlloc(),
		}
		if b.Get(counterKey) != nil {
			result.Records--
		}
		return nil
	})
	return result, err
}

func loggableRecord(rec Record) string {
	if rec == nil {
		return "<none>"
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "<unencodable: " + err.Error() + ">"
	}
	return string(raw)
}
