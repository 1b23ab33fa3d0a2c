package seqdb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrEncodingRange     = errors.New("key out of encodable range")
	ErrNotFound          = errors.New("record not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrStoreClosed       = errors.New("store closed")
)

// MissingIdentifierError is returned when a store or collection name is empty.
type MissingIdentifierError struct {
	What string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrMissingIdentifier.Error(), e.What)
}

func (e *MissingIdentifierError) Is(target error) bool {
	return target == ErrMissingIdentifier
}

type EncodingRangeError struct {
	Value uint64
	Raw   []byte
	Msg   string
}

func (e *EncodingRangeError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("%s: %s: %s", ErrEncodingRange.Error(), e.Msg, hexstr(e.Raw))
	}
	return fmt.Sprintf("%s: %s: %d", ErrEncodingRange.Error(), e.Msg, e.Value)
}

func (e *EncodingRangeError) Is(target error) bool {
	return target == ErrEncodingRange
}

type NotFoundError struct {
	Store      string
	Collection string
	ID         uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s/%d: %s", e.Store, e.Collection, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreUnavailableError reports a failure of the underlying engine. Err holds
// the engine error, or ErrStoreClosed when the store has been closed.
type StoreUnavailableError struct {
	Store string
	Op    string
	Err   error
}

func storeErr(store, op string, err error) error {
	var se *StoreUnavailableError
	if errors.As(err, &se) {
		return err
	}
	return &StoreUnavailableError{store, op, err}
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *StoreUnavailableError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Store)
	if e.Op != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Op)
	}
	buf.WriteString(": ")
	buf.WriteString(ErrStoreUnavailable.Error())
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// DataError reports malformed bytes read from the store.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
