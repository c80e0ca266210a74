// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/stakeledger/log"
)

const namespace = "stakeledger"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

// Gatherer returns the registry backing the active metrics service, nil if
// metrics are disabled.
func Gatherer() prometheus.Gatherer {
	if p, ok := metrics.(*prometheusMetrics); ok {
		return p.registry
	}
	return nil
}

type prometheusMetrics struct {
	mu         sync.Mutex
	registry   *prometheus.Registry
	counters   map[string]CountMeter
	counterVec map[string]CountVecMeter
	histograms map[string]HistogramMeter
	gauges     map[string]GaugeMeter
}

func newPrometheusMetrics() Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMetrics{
		registry:   registry,
		counters:   make(map[string]CountMeter),
		counterVec: make(map[string]CountVecMeter),
		histograms: make(map[string]HistogramMeter),
		gauges:     make(map[string]GaugeMeter),
	}
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	o.mu.Lock()
	defer o.mu.Unlock()

	if meter, ok := o.counters[name]; ok {
		return meter
	}
	meter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	})
	o.register(meter)
	o.counters[name] = &promCountMeter{counter: meter}
	return o.counters[name]
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	o.mu.Lock()
	defer o.mu.Unlock()

	if meter, ok := o.counterVec[name]; ok {
		return meter
	}
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	o.register(meter)
	o.counterVec[name] = &promCountVecMeter{counter: meter}
	return o.counterVec[name]
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	o.mu.Lock()
	defer o.mu.Unlock()

	if meter, ok := o.histograms[name]; ok {
		return meter
	}
	floatBuckets := make([]float64, 0, len(buckets))
	for _, bucket := range buckets {
		floatBuckets = append(floatBuckets, float64(bucket))
	}
	meter := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets,
	})
	o.register(meter)
	o.histograms[name] = &promHistogramMeter{histogram: meter}
	return o.histograms[name]
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	o.mu.Lock()
	defer o.mu.Unlock()

	if meter, ok := o.gauges[name]; ok {
		return meter
	}
	meter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	})
	o.register(meter)
	o.gauges[name] = &promGaugeMeter{gauge: meter}
	return o.gauges[name]
}

func (o *prometheusMetrics) register(c prometheus.Collector) {
	if err := o.registry.Register(c); err != nil {
		logger.Warn("unable to register metric", "err", err)
	}
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}
