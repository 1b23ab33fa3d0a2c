package seqdb

import (
	"math"
	"math/bits"
)

// MaxKey is the largest identifier representable by the key encoding.
const MaxKey = math.MaxInt64

const (
	// keyLimit is the smallest leading byte never produced by AppendKey.
	// Reserved keys start at or above it, so they sort after every record key.
	keyLimit = 9

	maxKeyLen = 1 + 8
)

var counterKey = []byte("\xffcounter")

// AppendKey appends the order-preserving encoding of n to buf.
//
// The encoding is a length byte L (0..8) followed by L big-endian bytes of n
// without leading zeros, so that bytes.Compare of two encodings agrees with
// numeric comparison of the values.
func AppendKey(buf []byte, n uint64) ([]byte, error) {
	if n > MaxKey {
		return buf, &EncodingRangeError{Value: n, Msg: "value exceeds MaxKey"}
	}
	l := (bits.Len64(n) + 7) / 8
	off, buf := grow(buf, 1+l)
	buf[off] = byte(l)
	for i := l; i > 0; i-- {
		buf[off+i] = byte(n)
		n >>= 8
	}
	return buf, nil
}

func EncodeKey(n uint64) ([]byte, error) {
	return AppendKey(make([]byte, 0, maxKeyLen), n)
}

func MustEncodeKey(n uint64) []byte {
	return must(EncodeKey(n))
}

// DecodeKey is the inverse of EncodeKey. Only canonical encodings are accepted.
func DecodeKey(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, &EncodingRangeError{Raw: b, Msg: "empty key"}
	}
	l := int(b[0])
	if l >= keyLimit {
		return 0, &EncodingRangeError{Raw: b, Msg: "invalid length byte"}
	}
	if len(b) != 1+l {
		return 0, &EncodingRangeError{Raw: b, Msg: "length mismatch"}
	}
	if l > 0 && b[1] == 0 {
		return 0, &EncodingRangeError{Raw: b, Msg: "non-canonical leading zero"}
	}
	var n uint64
	for _, c := range b[1:] {
		n = n<<8 | uint64(c)
	}
	if n > MaxKey {
		return 0, &EncodingRangeError{Value: n, Raw: b, Msg: "value exceeds MaxKey"}
	}
	return n, nil
}

func isRecordKey(k []byte) bool {
	return len(k) > 0 && k[0] < keyLimit
}

// recordRange covers every record key in a collection bucket and nothing else.
func recordRange() RawRange {
	return RawOE([]byte{keyLimit})
}
