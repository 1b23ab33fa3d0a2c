package seqdb

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		n   uint64
		hex string
	}{
		{0, "00"},
		{1, "01 01"},
		{9, "01 09"},
		{255, "01 ff"},
		{256, "02 01 00"},
		{65535, "02 ff ff"},
		{65536, "03 01 00 00"},
		{1 << 32, "05 01 00 00 00 00"},
		{1<<53 + 1, "07 20 00 00 00 00 00 01"},
		{MaxKey, "08 7f ff ff ff ff ff ff ff"},
	}
	for _, tt := range tests {
		a := must(EncodeKey(tt.n))
		if e := x(tt.hex); !bytes.Equal(a, e) {
			t.Errorf("EncodeKey(%d) = %x, wanted %x", tt.n, a, e)
		}
		n, err := DecodeKey(a)
		if err != nil {
			t.Errorf("DecodeKey(%x) failed: %v", a, err)
		} else if n != tt.n {
			t.Errorf("DecodeKey(%x) = %d, wanted %d", a, n, tt.n)
		}
	}
}

func TestEncodeKey_outOfRange(t *testing.T) {
	for _, n := range []uint64{MaxKey + 1, math.MaxUint64} {
		_, err := EncodeKey(n)
		if !errors.Is(err, ErrEncodingRange) {
			t.Errorf("EncodeKey(%d) err = %v, wanted ErrEncodingRange", n, err)
		}
		var ere *EncodingRangeError
		if !errors.As(err, &ere) || ere.Value != n {
			t.Errorf("EncodeKey(%d) err = %#v, wanted *EncodingRangeError with Value", n, err)
		}
	}
}

func TestDecodeKey_invalid(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"empty", ""},
		{"length byte too large", "09 01 02 03 04 05 06 07 08 09"},
		{"reserved", "ff 63 6f 75 6e 74 65 72"},
		{"truncated", "02 01"},
		{"trailing", "01 01 00"},
		{"leading zero", "02 00 01"},
		{"zero with payload", "01 00"},
		{"above MaxKey", "08 80 00 00 00 00 00 00 00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeKey(x(tt.hex))
			if !errors.Is(err, ErrEncodingRange) {
				t.Errorf("DecodeKey(%s) err = %v, wanted ErrEncodingRange", tt.hex, err)
			}
		})
	}
}

func TestEncodeKey_order(t *testing.T) {
	edges := []uint64{0, 1, 2, 9, 10, 99, 100, 127, 128, 255, 256, 257, 65535, 65536, 1<<24 - 1, 1 << 24, 1<<53 - 1, 1 << 53, MaxKey - 1, MaxKey}
	for i, a := range edges {
		for _, b := range edges[i+1:] {
			checkKeyOrder(t, a, b)
		}
	}

	rnd := rand.New(rand.NewSource(42))
	for range 10000 {
		a := uint64(rnd.Int63()) >> rnd.Intn(63)
		b := uint64(rnd.Int63()) >> rnd.Intn(63)
		if a > b {
			a, b = b, a
		}
		if a == b {
			continue
		}
		checkKeyOrder(t, a, b)
	}
}

func checkKeyOrder(t *testing.T, a, b uint64) {
	t.Helper()
	ka, kb := MustEncodeKey(a), MustEncodeKey(b)
	if bytes.Compare(ka, kb) >= 0 {
		t.Fatalf("encode(%d) = %x is not below encode(%d) = %x", a, ka, b, kb)
	}
}

func TestReservedKeysSortAfterRecords(t *testing.T) {
	if isRecordKey(counterKey) {
		t.Fatalf("isRecordKey(counterKey) = true, wanted false")
	}
	if bytes.Compare(MustEncodeKey(MaxKey), counterKey) >= 0 {
		t.Fatalf("encode(MaxKey) must sort before the counter key")
	}
	if !isRecordKey(MustEncodeKey(0)) || !isRecordKey(MustEncodeKey(MaxKey)) {
		t.Fatalf("isRecordKey rejects codec output")
	}
}

func TestAppendKey_reusesBuffer(t *testing.T) {
	buf := []byte{0xaa}
	buf = must(AppendKey(buf, 256))
	deepEqual(t, buf, x("aa 02 01 00"))

	buf = must(AppendKey(buf, 0))
	deepEqual(t, buf, x("aa 02 01 00 00"))
}
