// Package metrics exposes scene statistics as Prometheus metrics.
package metrics

import (
	"github.com/chazu/stereo/pkg/scene"
	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a point-in-time view of a scene's counters.
type Snapshot struct {
	Entities       map[scene.Kind]int
	Revision       uint64
	PlaneRefreshes uint64
}

// Take reads the counters of r. Every kind is present in Entities, with
// zero for kinds the scene does not contain.
func Take(r *scene.Registry) Snapshot {
	s := Snapshot{
		Entities:       make(map[scene.Kind]int),
		Revision:       r.Revision(),
		PlaneRefreshes: r.PlaneRefreshes(),
	}
	for k := scene.KindPoint; k <= scene.KindFigure3; k++ {
		s.Entities[k] = 0
	}
	for _, e := range r.Entities() {
		s.Entities[e.Kind]++
	}
	return s
}

// Collector is a prometheus.Collector reporting scene statistics. The
// snapshot function is called on every scrape; it must be safe to call
// from the scraping goroutine.
type Collector struct {
	snapshot func() Snapshot

	entities  *prometheus.Desc
	revision  *prometheus.Desc
	refreshes *prometheus.Desc
}

// NewCollector returns a collector reading its values from snapshot.
func NewCollector(snapshot func() Snapshot) *Collector {
	return &Collector{
		snapshot: snapshot,
		entities: prometheus.NewDesc(
			"stereo_scene_entities",
			"Number of entities in the scene by kind.",
			[]string{"kind"}, nil,
		),
		revision: prometheus.NewDesc(
			"stereo_scene_revision",
			"Geometry revision of the scene.",
			nil, nil,
		),
		refreshes: prometheus.NewDesc(
			"stereo_plane_refreshes_total",
			"Plane normal and contour recomputations.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entities
	ch <- c.revision
	ch <- c.refreshes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	for k, n := range s.Entities {
		ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(n), k.String())
	}
	ch <- prometheus.MustNewConstMetric(c.revision, prometheus.GaugeValue, float64(s.Revision))
	ch <- prometheus.MustNewConstMetric(c.refreshes, prometheus.CounterValue, float64(s.PlaneRefreshes))
}
