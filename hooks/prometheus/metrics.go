// Package promhooks exports cache events as Prometheus counters.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/asidecache"
)

// Hooks counts events. Keys are never used as labels.
type Hooks struct {
	outcomes      *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	codecErrors   *prometheus.CounterVec
	expireMissing prometheus.Counter
	batchMatched  prometheus.Counter
	batchWritten  prometheus.Counter
	batchFailed   prometheus.Counter
}

var _ asidecache.Hooks = (*Hooks)(nil)

// New registers the collectors with reg (prometheus.DefaultRegisterer when
// nil) under the given metric namespace.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "asidecache"
	}
	h := &Hooks{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "get_or_set_total",
			Help:      "GetOrSet calls by outcome.",
		}, []string{"outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store operations by op.",
		}, []string{"op"}),
		codecErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_errors_total",
			Help:      "Entries that could not be decoded or encoded.",
		}, []string{"op"}),
		expireMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expire_missing_total",
			Help:      "Expire calls for keys that were not cached.",
		}),
		batchMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_expire_matched_total",
			Help:      "Keys matched by ExpireByPrefix scans.",
		}),
		batchWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_expire_written_total",
			Help:      "Entries rewritten by ExpireByPrefix.",
		}),
		batchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_expire_failed_total",
			Help:      "ExpireByPrefix writes that failed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		h.outcomes, h.storeErrors, h.codecErrors,
		h.expireMissing, h.batchMatched, h.batchWritten, h.batchFailed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// pre-create label values so dashboards see zeros
	for _, o := range asidecache.Outcomes() {
		h.outcomes.WithLabelValues(o.String())
	}
	for _, op := range []string{"get", "set", "mget", "mset", "scan"} {
		h.storeErrors.WithLabelValues(op)
	}
	return h, nil
}

func (h *Hooks) Outcome(_ string, o asidecache.Outcome) {
	h.outcomes.WithLabelValues(o.String()).Inc()
}

func (h *Hooks) StoreError(op, _ string, _ error) {
	h.storeErrors.WithLabelValues(op).Inc()
}

func (h *Hooks) CodecError(op, _ string, _ error) {
	h.codecErrors.WithLabelValues(op).Inc()
}

func (h *Hooks) ExpireMissing(string) { h.expireMissing.Inc() }

func (h *Hooks) BatchExpired(_ string, matched, written int) {
	h.batchMatched.Add(float64(matched))
	h.batchWritten.Add(float64(written))
}

func (h *Hooks) BatchPartial(_ string, failed, _ int) {
	h.batchFailed.Add(float64(failed))
}

// Multi fans events out to several hooks, in order.
type Multi []asidecache.Hooks

var _ asidecache.Hooks = Multi(nil)

func (m Multi) Outcome(k string, o asidecache.Outcome) {
	for _, h := range m {
		h.Outcome(k, o)
	}
}

func (m Multi) StoreError(op, k string, err error) {
	for _, h := range m {
		h.StoreError(op, k, err)
	}
}

func (m Multi) CodecError(op, k string, err error) {
	for _, h := range m {
		h.CodecError(op, k, err)
	}
}

func (m Multi) ExpireMissing(k string) {
	for _, h := range m {
		h.ExpireMissing(k)
	}
}

func (m Multi) BatchExpired(p string, matched, written int) {
	for _, h := range m {
		h.BatchExpired(p, matched, written)
	}
}

func (m Multi) BatchPartial(p string, failed, total int) {
	for _, h := range m {
		h.BatchPartial(p, failed, total)
	}
}
