// Package instrumented decorates assoc containers with Prometheus metrics.
package instrumented

import (
	"iter"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/homier/assoc"
	"github.com/homier/assoc/errcode"
	"github.com/homier/assoc/hashstore"
)

var (
	mapPrometheusMetrics sync.Once

	mapOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assoc",
			Name:      "operations_total",
			Help:      "Number of Map operations, by outcome",
		},
		[]string{"name", "operation", "outcome"},
	)
	mapEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "assoc",
			Name:      "entries",
			Help:      "Number of entries held by a Map",
		},
		[]string{"name"},
	)
)

const numCodes = int(errcode.InvariantViolation) + 1

// outcomes holds one counter per error code of an operation.
type outcomes [numCodes]prometheus.Counter

func newOutcomes(name, operation string) *outcomes {
	var o outcomes
	for c := range o {
		o[c] = mapOperations.WithLabelValues(name, operation, outcomeLabel(errcode.Code(c)))
	}

	return &o
}

func outcomeLabel(c errcode.Code) string {
	switch c {
	case errcode.OK:
		return "OK"
	case errcode.NotFound:
		return "NotFound"
	case errcode.AlreadyPresent:
		return "AlreadyPresent"
	case errcode.CapacityExhausted:
		return "CapacityExhausted"
	case errcode.NotSupported:
		return "NotSupported"
	default:
		return "Error"
	}
}

func (o *outcomes) record(err error) {
	c := errcode.Of(err)
	if int(c) >= numCodes {
		c = errcode.BadLogic
	}

	o[c].Inc()
}

// Map has the API of assoc.Map and counts every call.
type Map[K comparable, V any] struct {
	m *assoc.Map[K, V]

	entries prometheus.Gauge

	insert *outcomes
	assign *outcomes
	find   *outcomes
	erase  *outcomes
	rang   *outcomes
}

// Wrap instruments m under the given name. Calls made on m directly are
// not counted.
func Wrap[K comparable, V any](name string, m *assoc.Map[K, V]) *Map[K, V] {
	mapPrometheusMetrics.Do(func() {
		prometheus.MustRegister(mapOperations)
		prometheus.MustRegister(mapEntries)
	})

	im := &Map[K, V]{
		m:       m,
		entries: mapEntries.WithLabelValues(name),

		insert: newOutcomes(name, "Insert"),
		assign: newOutcomes(name, "Assign"),
		find:   newOutcomes(name, "Find"),
		erase:  newOutcomes(name, "Erase"),
		rang:   newOutcomes(name, "Range"),
	}
	im.entries.Set(float64(m.Len()))

	return im
}

// Unwrap returns the underlying Map.
func (im *Map[K, V]) Unwrap() *assoc.Map[K, V] {
	return im.m
}

func (im *Map[K, V]) Backend() assoc.Backend {
	return im.m.Backend()
}

func (im *Map[K, V]) Len() int {
	return im.m.Len()
}

func (im *Map[K, V]) Insert(key K, value V) error {
	err := im.m.Insert(key, value)
	im.insert.record(err)
	im.entries.Set(float64(im.m.Len()))

	return err
}

func (im *Map[K, V]) Assign(key K, value V) error {
	err := im.m.Assign(key, value)
	im.assign.record(err)
	im.entries.Set(float64(im.m.Len()))

	return err
}

func (im *Map[K, V]) Find(key K) (V, error) {
	v, err := im.m.Find(key)
	im.find.record(err)

	return v, err
}

// Get is counted as a Find.
func (im *Map[K, V]) Get(key K) (V, bool) {
	v, err := im.Find(key)
	return v, err == nil
}

func (im *Map[K, V]) Has(key K) bool {
	_, ok := im.Get(key)
	return ok
}

func (im *Map[K, V]) Erase(key K) error {
	err := im.m.Erase(key)
	im.erase.record(err)
	im.entries.Set(float64(im.m.Len()))

	return err
}

func (im *Map[K, V]) Clear() {
	im.m.Clear()
	im.entries.Set(0)
}

func (im *Map[K, V]) All() iter.Seq2[K, V] {
	return im.m.All()
}

func (im *Map[K, V]) Keys() iter.Seq[K] {
	return im.m.Keys()
}

func (im *Map[K, V]) Range(low, high assoc.Bound[K]) (iter.Seq2[K, V], error) {
	seq, err := im.m.Range(low, high)
	im.rang.record(err)

	return seq, err
}

func (im *Map[K, V]) Stats() (hashstore.Stats, error) {
	return im.m.Stats()
}
