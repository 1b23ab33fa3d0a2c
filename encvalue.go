package seqdb

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

type valueFlags uint64

const (
	vfVerBit0 = valueFlags(1 << iota)
	vfVerBit1
	vfVerBit2
	vfVerBit3
	vfEncodingBit0

	vfVerMask       = (vfVerBit0 | vfVerBit1 | vfVerBit2 | vfVerBit3)
	vfVer1          = vfVerBit0
	vfJSON          = vfEncodingBit0
	vfSupportedMask = (vfVer1 | vfJSON)

	minValueSize = 1 + 8
)

func (vf valueFlags) ver() valueFlags {
	return vf & vfVerMask
}

func (vf valueFlags) encoding() Encoding {
	if vf&vfJSON != 0 {
		return JSON
	}
	return MsgPack
}

func flagsFor(enc Encoding) valueFlags {
	if enc == JSON {
		return vfVer1 | vfJSON
	}
	return vfVer1
}

// value is a stored record: flags (uvarint), xxhash64 of data (8 bytes,
// big endian), then the encoded record.
type value struct {
	Flags valueFlags
	Sum   uint64
	Data  []byte
}

func appendValue(buf []byte, enc Encoding, rec Record) ([]byte, error) {
	bb := bytesBuilder{buf}
	bb.AppendUvarint(uint64(flagsFor(enc)))
	sumOff := bb.Grow(8)
	dataOff := len(bb.Buf)

	out, err := enc.AppendRecord(bb.Buf, rec)
	if err != nil {
		return buf, err
	}
	binary.BigEndian.PutUint64(out[sumOff:], xxhash.Sum64(out[dataOff:]))
	return out, nil
}

func (vle *value) decode(data []byte) error {
	if len(data) < minValueSize {
		return dataErrf(data, 0, nil, "invalid value: at least %d bytes required", minValueSize)
	}
	d := makeByteDecoder(data)

	v, err := d.Uvarint()
	if err != nil {
		return err
	}
	if (v &^ uint64(vfSupportedMask)) != 0 {
		return dataErrf(data, 0, nil, "invalid value: unsupported flags %x", v)
	}
	vle.Flags = valueFlags(v)
	if vle.Flags.ver() != vfVer1 {
		return dataErrf(data, 0, nil, "invalid value: unsupported version %d", vle.Flags.ver())
	}

	vle.Sum, err = d.FixedUint64()
	if err != nil {
		return err
	}
	vle.Data = d.Rest()

	if actual := xxhash.Sum64(vle.Data); actual != vle.Sum {
		return dataErrf(data, d.Off(), nil, "invalid value: checksum %016x, wanted %016x", actual, vle.Sum)
	}
	return nil
}

func decodeValue(data []byte) (Record, error) {
	var vle value
	if err := vle.decode(data); err != nil {
		return nil, err
	}
	return vle.Flags.encoding().DecodeRecord(vle.Data)
}

func (vle value) String() string {
	return fmt.Sprintf("%s:%016x:%d", vle.Flags.encoding(), vle.Sum, len(vle.Data))
}
