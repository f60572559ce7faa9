package nsstore

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// storeMetrics holds the counters of one namespace.
// Stores sharing a namespace share the counters.
type storeMetrics struct {
	gets    *metrics.Counter
	sets    *metrics.Counter
	removes *metrics.Counter
	clears  *metrics.Counter
	cleared *metrics.Counter
	errors  *metrics.Counter
}

// newStoreMetrics returns the counters of namespace. The namespace is used
// verbatim as label value, %q escapes quotes and backslashes.
func newStoreMetrics(namespace string) *storeMetrics {
	op := func(name string) *metrics.Counter {
		return metrics.GetOrCreateCounter(fmt.Sprintf(`nskv_store_ops_total{op=%q,namespace=%q}`, name, namespace))
	}
	return &storeMetrics{
		gets:    op("get"),
		sets:    op("set"),
		removes: op("remove"),
		clears:  op("clear"),
		cleared: metrics.GetOrCreateCounter(fmt.Sprintf(`nskv_store_cleared_entries_total{namespace=%q}`, namespace)),
		errors:  metrics.GetOrCreateCounter(fmt.Sprintf(`nskv_store_errors_total{namespace=%q}`, namespace)),
	}
}
