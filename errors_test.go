package seqdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2)") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2)", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(data, 0, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestStoreUnavailableError(t *testing.T) {
	inner := errors.New("disk on fire")
	err := storeErr("s", "insert", inner)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, inner) {
		t.Fatalf("err = %v, wanted ErrStoreUnavailable wrapping inner", err)
	}
	deepEqual(t, err.Error(), "s: insert: store unavailable: disk on fire")

	// already classified errors are not wrapped twice
	wrapped := fmt.Errorf("ctx: %w", err)
	deepEqual(t, storeErr("s", "other", wrapped), wrapped)
}

func TestErrorMessages(t *testing.T) {
	deepEqual(t, (&MissingIdentifierError{"store name"}).Error(), "missing identifier: store name is required")
	deepEqual(t, (&NotFoundError{"s", "c", 7}).Error(), "s/c/7: record not found")
	deepEqual(t, (&EncodingRangeError{Value: 5, Msg: "too big"}).Error(), "key out of encodable range: too big: 5")
	deepEqual(t, (&EncodingRangeError{Raw: []byte{0x09}, Msg: "bad"}).Error(), "key out of encodable range: bad: 09")
}

func TestErrors_sentinelsDontCross(t *testing.T) {
	var errs = []error{
		&MissingIdentifierError{"x"},
		&EncodingRangeError{},
		&NotFoundError{},
		&StoreUnavailableError{},
	}
	sentinels := []error{ErrMissingIdentifier, ErrEncodingRange, ErrNotFound, ErrStoreUnavailable}
	for i, err := range errs {
		for j, sentinel := range sentinels {
			if errors.Is(err, sentinel) != (i == j) {
				t.Errorf("errors.Is(%T, %v) = %v", err, sentinel, i != j)
			}
		}
	}
}
