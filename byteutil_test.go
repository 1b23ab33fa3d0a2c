package seqdb

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	off := bb.Grow(3)
	copy(bb.Buf[off:], []byte{1, 2, 3})
	bb.AppendUvarint(300)

	want := binary.AppendUvarint([]byte{1, 2, 3}, 300)
	if !reflect.DeepEqual(bb.Buf, want) {
		t.Fatalf("bb.Buf = %x, wanted %x", bb.Buf, want)
	}

	bb.Trim(2)
	if !reflect.DeepEqual(bb.Buf, []byte{1, 2}) {
		t.Fatalf("after Trim: bb.Buf = %x, wanted 0102", bb.Buf)
	}

	deepEqual(t, appendRaw(bb.Buf, []byte{9, 8}), []byte{1, 2, 9, 8})
}

func TestEnsureCapacity_keepsContents(t *testing.T) {
	buf := ensureCapacity([]byte{1, 2}, 100)
	if cap(buf) < 100 || !reflect.DeepEqual(buf, []byte{1, 2}) {
		t.Fatalf("ensureCapacity = %x (cap %d), wanted 0102 with cap >= 100", buf, cap(buf))
	}
}

func TestByteDecoder(t *testing.T) {
	var bb bytesBuilder
	bb.AppendUvarint(300)
	buf := binary.BigEndian.AppendUint64(bb.Buf, 7)
	buf = append(buf, "rest"...)

	d := makeByteDecoder(buf)
	if v, err := d.Uvarint(); err != nil || v != 300 {
		t.Fatalf("Uvarint = (%d, %v), wanted 300", v, err)
	}
	if v, err := d.FixedUint64(); err != nil || v != 7 {
		t.Fatalf("FixedUint64 = (%d, %v), wanted 7", v, err)
	}
	deepEqual(t, d.Off(), 10)
	deepEqual(t, string(d.Rest()), "rest")

	_, err := d.Raw(1)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("Raw past end err = %v, wanted *DataError", err)
	}
	if _, err := d.Uvarint(); err == nil {
		t.Fatalf("Uvarint past end err = nil")
	}
}
