// Package metrics exposes rle.Counters snapshots as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mellowdrifter/rle/rle"
)

// Collector polls a Transmitter's and a Receiver's counters on every
// Prometheus scrape. It implements prometheus.Collector directly
// rather than registering individual gauge vecs, since the underlying
// values are a point-in-time snapshot taken under a mutex (rle.Counters)
// and never drift between collection and emission.
type Collector struct {
	txCounters *rle.Counters
	rxCounters *rle.Counters

	ok      *prometheus.Desc
	dropped *prometheus.Desc
	lost    *prometheus.Desc
	bytes   *prometheus.Desc
}

// NewCollector wires a Transmitter's and Receiver's counter blocks into
// a Prometheus collector. Either may be nil if that side isn't running
// in this process.
func NewCollector(tx *rle.Transmitter, rx *rle.Receiver) *Collector {
	c := &Collector{
		ok:      prometheus.NewDesc("rle_alpdu_ok_total", "ALPDUs successfully encapsulated or reassembled.", []string{"role"}, nil),
		dropped: prometheus.NewDesc("rle_alpdu_dropped_total", "ALPDUs dropped due to error.", []string{"role"}, nil),
		lost:    prometheus.NewDesc("rle_alpdu_lost_total", "ALPDUs inferred lost from a sequence-number gap or an out-of-sequence PPDU.", []string{"role"}, nil),
		bytes:   prometheus.NewDesc("rle_bytes_total", "Bytes successfully encapsulated or reassembled.", []string{"role"}, nil),
	}
	if tx != nil {
		c.txCounters = tx.Counters()
	}
	if rx != nil {
		c.rxCounters = rx.Counters()
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ok
	ch <- c.dropped
	ch <- c.lost
	ch <- c.bytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.txCounters != nil {
		c.emit(ch, "transmitter", c.txCounters.Snapshot())
	}
	if c.rxCounters != nil {
		c.emit(ch, "receiver", c.rxCounters.Snapshot())
	}
}

func (c *Collector) emit(ch chan<- prometheus.Metric, role string, s rle.Stats) {
	ch <- prometheus.MustNewConstMetric(c.ok, prometheus.CounterValue, float64(s.OK), role)
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), role)
	ch <- prometheus.MustNewConstMetric(c.lost, prometheus.CounterValue, float64(s.Lost), role)
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Bytes), role)
}
