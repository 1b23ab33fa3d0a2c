package seqdb

import (
	"encoding/json"
	"fmt"

	"github.com/SierraSoftworks/connor"
)

// Predicate selects records during scans and deletes.
type Predicate func(Record) bool

// Filter builds a Predicate from a MongoDB-style filter document, e.g.
// {"val": "one"} or {"n": {"$gt": 2}}. Both the filter and each record are
// compared in their JSON form, so all numbers are float64 and IDField is
// matched as a number. Records that cannot be matched are skipped.
func Filter(filter map[string]any) (Predicate, error) {
	norm, err := normalizeDoc(filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if len(norm) == 0 {
		return nil, nil
	}
	return func(rec Record) bool {
		row, err := normalizeDoc(rec)
		if err != nil {
			return false
		}
		match, err := connor.Match(norm, row)
		return err == nil && match
	}, nil
}

// ParseFilter is like Filter, but takes the filter document as JSON.
// An empty string matches everything.
func ParseFilter(raw string) (Predicate, error) {
	if raw == "" {
		return nil, nil
	}
	var filter map[string]any
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return Filter(filter)
}

// Not inverts pred. A nil pred matches everything, so Not(nil) matches nothing.
func Not(pred Predicate) Predicate {
	return func(rec Record) bool {
		return pred != nil && !pred(rec)
	}
}

func normalizeDoc(doc map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
