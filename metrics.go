package seqdb

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var (
	insertedRecords = metrics.NewCounter(`seqdb_records_inserted_total`)
	deletedRecords  = metrics.NewCounter(`seqdb_records_deleted_total`)
	recomputes      = metrics.NewCounter(`seqdb_counter_recomputes_total`)
	staleCounters   = metrics.NewCounter(`seqdb_stale_counters_total`)

	openStores atomic.Int64
	_          = metrics.NewGauge(`seqdb_open_stores`, func() float64 {
		return float64(openStores.Load())
	})
)

// observe records the outcome of an operation; call it deferred with a
// pointer to the named error result.
func observe(op string, start time.Time, errp *error) {
	metrics.GetOrCreateCounter(`seqdb_ops_total{op="` + op + `"}`).Inc()
	metrics.GetOrCreateHistogram(`seqdb_op_duration_seconds{op="` + op + `"}`).UpdateDuration(start)
	if errp != nil && *errp != nil {
		metrics.GetOrCreateCounter(`seqdb_op_errors_total{op="` + op + `"}`).Inc()
	}
}

// WriteMetrics writes all seqdb metrics in Prometheus text format.
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
