package seqdb

import "maps"

// IDField is the field holding the record identifier in records returned
// by a Collection. It is derived from the key and never stored.
const IDField = "_id"

// Record is a schemaless document.
type Record map[string]any

// ID returns the identifier of a record read from a collection.
func (r Record) ID() (uint64, bool) {
	id, ok := r[IDField].(uint64)
	return id, ok
}

// payload returns the record without IDField, copying only when needed.
func (r Record) payload() Record {
	if _, found := r[IDField]; !found {
		return r
	}
	p := make(Record, len(r)-1)
	for k, v := range r {
		if k != IDField {
			p[k] = v
		}
	}
	return p
}

// merge applies a shallow update. Fields of partial win; IDField is ignored.
func (r Record) merge(partial Record) Record {
	out := maps.Clone(r)
	if out == nil {
		out = make(Record, len(partial))
	}
	for k, v := range partial {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}

func (r Record) withID(id uint64) Record {
	r[IDField] = id
	return r
}
