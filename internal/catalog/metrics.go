package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
)

// Metrics records catalog activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	lenses      prometheus.Gauge
	cameras     prometheus.Gauge
	rentals     prometheus.Gauge
	reloads     *prometheus.CounterVec
	filterSizes prometheus.Histogram
}

// NewMetrics registers the catalog collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		lenses: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinelens_catalog_lenses",
			Help: "Number of lenses in the active catalog snapshot",
		}),
		cameras: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinelens_catalog_cameras",
			Help: "Number of cameras in the active catalog snapshot",
		}),
		rentals: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinelens_catalog_rentals",
			Help: "Number of rental houses in the active catalog snapshot",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelens_catalog_reloads_total",
			Help: "Catalog reload attempts by source and result",
		}, []string{"source", "result"}),
		filterSizes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinelens_catalog_filter_results",
			Help:    "Number of lenses returned by a filter request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// ObserveSnapshot updates the size gauges.
func (m *Metrics) ObserveSnapshot(snap pkgcatalog.Snapshot) {
	if m == nil {
		return
	}
	m.lenses.Set(float64(len(snap.Lenses)))
	m.cameras.Set(float64(len(snap.Cameras)))
	m.rentals.Set(float64(len(snap.Rentals)))
}

// ObserveReload is a pkgcatalog.ReloadFunc.
func (m *Metrics) ObserveReload(source string, snap pkgcatalog.Snapshot, _ pkgcatalog.DecodeReport, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues(source, "error").Inc()
		return
	}
	m.reloads.WithLabelValues(source, "success").Inc()
	m.ObserveSnapshot(snap)
}

func (m *Metrics) observeFilter(n int) {
	if m == nil {
		return
	}
	m.filterSizes.Observe(float64(n))
}
