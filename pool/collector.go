package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is satisfied by any Registry instantiation.
type StatsSource interface {
	Stats() []Stats
}

// Collector exports pool bookkeeping as prometheus metrics labelled by kind.
// It reads the registry without locking, so Gather must run on the same
// goroutine that mutates the registry.
type Collector struct {
	src StatsSource

	free      *prometheus.Desc
	active    *prometheus.Desc
	capacity  *prometheus.Desc
	exhausted *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(src StatsSource) *Collector {
	labels := []string{"kind"}
	return &Collector{
		src:       src,
		free:      prometheus.NewDesc("breakout_pool_free", "Inactive entities waiting in the pool.", labels, nil),
		active:    prometheus.NewDesc("breakout_pool_active", "Entities currently acquired from the pool.", labels, nil),
		capacity:  prometheus.NewDesc("breakout_pool_capacity", "Maximum entities the pool may create.", labels, nil),
		exhausted: prometheus.NewDesc("breakout_pool_exhausted_total", "Acquire calls refused because the pool was at capacity.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.free
	ch <- c.active
	ch <- c.capacity
	ch <- c.exhausted
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.src == nil {
		return
	}
	for _, s := range c.src.Stats() {
		kind := string(s.Key)
		ch <- prometheus.MustNewConstMetric(c.free, prometheus.GaugeValue, float64(s.Free), kind)
		ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.Active), kind)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), kind)
		ch <- prometheus.MustNewConstMetric(c.exhausted, prometheus.CounterValue, float64(s.Exhausted), kind)
	}
}
