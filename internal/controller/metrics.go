package controller

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	docsIndexed   *prometheus.CounterVec
	mapErrors     *prometheus.CounterVec
	rebuilds      *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	reg prometheus.Registerer
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{reg: reg}
	var err error

	m.docsIndexed, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goyview",
		Name:      "documents_indexed_total",
		Help:      "Number of documents passed to map functions.",
	}, []string{"view"}))
	if err != nil {
		return nil, err
	}

	m.mapErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goyview",
		Name:      "map_errors_total",
		Help:      "Number of documents a map function failed on.",
	}, []string{"view"}))
	if err != nil {
		return nil, err
	}

	m.rebuilds, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goyview",
		Name:      "view_rebuilds_total",
		Help:      "Number of full view rebuilds.",
	}, []string{"view"}))
	if err != nil {
		return nil, err
	}

	m.queryDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "goyview",
		Name:      "query_duration_seconds",
		Help:      "Duration of view queries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"view", "reduce"}))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// register returns the already registered collector if the
// database was opened before
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) unregister() {
	m.reg.Unregister(m.docsIndexed)
	m.reg.Unregister(m.mapErrors)
	m.reg.Unregister(m.rebuilds)
	m.reg.Unregister(m.queryDuration)
}
