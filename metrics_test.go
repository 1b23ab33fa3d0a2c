package seqdb

import (
	"strings"
	"testing"
)

func TestWriteMetrics(t *testing.T) {
	reg := setupMem(t)
	c := open(t, reg, "metrics", "c")
	insert(t, c, Record{"val": "one"})
	_, _ = c.Get(42)

	var buf strings.Builder
	WriteMetrics(&buf)
	s := buf.String()
	for _, e := range []string{
		`seqdb_ops_total{op="insert"}`,
		`seqdb_op_errors_total{op="get"}`,
		`seqdb_op_duration_seconds_bucket{op="insert"`,
		`seqdb_records_inserted_total`,
		`seqdb_open_stores`,
	} {
		if !strings.Contains(s, e) {
			t.Errorf("metrics lack %s", e)
		}
	}
}
