package seqdb

import (
	"encoding/hex"
	"reflect"
	"strings"
	"testing"
)

func setup(t testing.TB) *Registry {
	t.Helper()
	dir := t.TempDir()
	t.Logf("DB: %s", dir)
	reg := NewRegistry(Options{
		Dir:       dir,
		IsTesting: true,
	})
	t.Cleanup(func() { ensure(reg.CloseAll()) })
	return reg
}

func setupMem(t testing.TB) *Registry {
	t.Helper()
	reg := NewRegistry(Options{
		Engine:    EngineMemory,
		IsTesting: true,
	})
	t.Cleanup(func() { ensure(reg.CloseAll()) })
	return reg
}

// forEachEngine runs f against a fresh registry of every engine.
func forEachEngine(t *testing.T, f func(t *testing.T, reg *Registry)) {
	t.Run("bolt", func(t *testing.T) {
		f(t, setup(t))
	})
	t.Run("memory", func(t *testing.T) {
		f(t, setupMem(t))
	})
}

func open(t testing.TB, reg *Registry, store, coll string) *Collection {
	t.Helper()
	c, err := reg.Open(store, coll)
	if err != nil {
		t.Fatalf("Open(%q, %q) failed: %v", store, coll, err)
	}
	return c
}

func insert(t testing.TB, c *Collection, items ...Record) []uint64 {
	t.Helper()
	ids, err := c.InsertIDs(items...)
	if err != nil {
		t.Fatalf("InsertIDs failed: %v", err)
	}
	return ids
}

func all(t testing.TB, c *Collection, pred Predicate) []Record {
	t.Helper()
	recs, err := c.All(pred)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	return recs
}

func vals(recs []Record) string {
	var out []string
	for _, rec := range recs {
		out = append(out, rec["val"].(string))
	}
	return strings.Join(out, " ")
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}

func x(data string) []byte {
	data = strings.ReplaceAll(data, " ", "")
	return must(hex.DecodeString(data))
}
