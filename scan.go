package seqdb

import (
	"bytes"
	"context"
	"log/slog"
)

const (
	debugLogRawScans = false
)

// RawRange defines a range of byte strings. In constructor names O means open
// and E means exclusive; the first letter is for the lower bound, the second
// for the upper bound.
type RawRange struct {
	Lower    []byte
	Upper    []byte
	LowerInc bool
	UpperInc bool
	Reverse  bool
}

func RawOO() RawRange         { return RawRange{} }
func RawOE(u []byte) RawRange { return RawRange{Upper: u, UpperInc: false} }
func (rang RawRange) Reversed() RawRange { rang.Reverse = true; return rang }

func (r *RawRange) start(bcur storageCursor, logger *slog.Logger) ([]byte, []byte) {
	var k, v []byte
	var bound []byte
	var skipEqual bool
	if r.Reverse {
		if bound = r.Upper; bound != nil {
			k, v = bcur.SeekLast(bound)
			skipEqual = !r.UpperInc
		} else {
			k, v = bcur.Last()
		}
	} else {
		if bound = r.Lower; bound != nil {
			k, v = bcur.Seek(bound)
			skipEqual = !r.LowerInc
		} else {
			k, v = bcur.First()
		}
	}
	if debugLogRawScans {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "scan start", hexAttr("bound", bound), hexAttr("key", k), slog.Bool("reverse", r.Reverse))
	}
	// SeekLast lands on keys having bound as a prefix, which an exclusive
	// reverse scan must step over.
	for k != nil && bound != nil && r.Reverse && bytes.Compare(k, bound) > 0 {
		k, v = bcur.Prev()
	}
	if skipEqual && k != nil && bytes.Equal(k, bound) {
		return r.next(bcur, logger)
	}
	if k != nil && r.match(k) {
		return k, v
	}
	return nil, nil
}

func (r *RawRange) next(bcur storageCursor, logger *slog.Logger) ([]byte, []byte) {
	var k, v []byte
	if r.Reverse {
		k, v = bcur.Prev()
	} else {
		k, v = bcur.Next()
	}
	if debugLogRawScans {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "scan next", hexAttr("key", k))
	}
	if k != nil && r.match(k) {
		return k, v
	}
	return nil, nil
}

// match checks the bound opposite to the scan direction.
func (r *RawRange) match(k []byte) bool {
	if r.Reverse {
		if lower := r.Lower; lower != nil {
			cmp := bytes.Compare(k, lower)
			if cmp < 0 || (cmp == 0 && !r.LowerInc) {
				return false
			}
		}
	} else {
		if upper := r.Upper; upper != nil {
			cmp := bytes.Compare(k, upper)
			if cmp > 0 || (cmp == 0 && !r.UpperInc) {
				return false
			}
		}
	}
	return true
}

func (rang *RawRange) newCursor(bcur storageCursor, logger *slog.Logger) *RawRangeCursor {
	return &RawRangeCursor{rang: *rang, bcur: bcur, logger: logger}
}

type RawRangeCursor struct {
	rang   RawRange
	bcur   storageCursor
	logger *slog.Logger
	k, v   []byte
	init   bool
}

func (c *RawRangeCursor) Next() bool {
	if c.init {
		c.k, c.v = c.rang.next(c.bcur, c.logger)
	} else {
		c.init = true
		c.k, c.v = c.rang.start(c.bcur, c.logger)
	}
	return c.k != nil
}

func (c *RawRangeCursor) Key() []byte   { return c.k }
func (c *RawRangeCursor) Value() []byte { return c.v }
