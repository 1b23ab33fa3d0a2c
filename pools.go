package seqdb

import "sync"

const maxPooledValueCap = 1 << 20

var arrayOfBytesPool = &sync.Pool{
	New: func() any {
		return make([][]byte, 0, 64)
	},
}

var valueBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

func releaseValueBytes(b []byte) {
	if cap(b) > maxPooledValueCap {
		return
	}
	valueBytesPool.Put(b[:0])
}
