package seqdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how record payloads are serialized. Values written with
// either encoding can always be read back, the envelope records which one was used.
type Encoding int

const (
	MsgPack Encoding = iota
	JSON

	defaultValueEncoding = MsgPack
)

func (enc Encoding) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Encoding(%d)", int(enc))
	}
}

func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "msgpack":
		return MsgPack, nil
	case "json":
		return JSON, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

func (enc Encoding) AppendRecord(buf []byte, rec Record) ([]byte, error) {
	m := map[string]any(rec)
	if m == nil {
		m = map[string]any{}
	}
	switch enc {
	case MsgPack:
		bb := bytesBuilder{buf}
		e := msgpack.GetEncoder()
		e.ResetDict(&bb, nil)
		e.SetSortMapKeys(true)
		err := e.Encode(m)
		msgpack.PutEncoder(e)
		if err != nil {
			return buf, fmt.Errorf("failed to encode record using MsgPack: %w", err)
		}
		return bb.Buf, nil
	case JSON:
		raw, err := json.Marshal(m)
		if err != nil {
			return buf, fmt.Errorf("failed to encode record to JSON: %w", err)
		}
		return appendRaw(buf, raw), nil
	default:
		panic("unsupported encoding")
	}
}

func (enc Encoding) DecodeRecord(buf []byte) (Record, error) {
	var m map[string]any
	switch enc {
	case MsgPack:
		var r bytes.Reader
		r.Reset(buf)
		dec := msgpack.GetDecoder()
		dec.ResetDict(&r, nil)
		dec.UseLooseInterfaceDecoding(true)
		err := dec.Decode(&m)
		msgpack.PutDecoder(dec)
		if err != nil {
			return nil, dataErrf(buf, 0, err, "failed to decode msgpack record")
		}
	case JSON:
		err := json.Unmarshal(buf, &m)
		if err != nil {
			return nil, dataErrf(buf, 0, err, "failed to decode JSON record")
		}
	default:
		panic("unsupported encoding")
	}
	if m == nil {
		m = make(map[string]any)
	}
	return Record(m), nil
}
