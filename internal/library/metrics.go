package library

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records library activity. A nil *Metrics records nothing.
type Metrics struct {
	favorites  prometheus.Gauge
	comparison prometheus.Gauge
	rejections prometheus.Counter
}

// NewMetrics registers the library collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		favorites: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinelens_library_favorites",
			Help: "Number of favorite lenses",
		}),
		comparison: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinelens_library_comparison",
			Help: "Number of lenses in the comparison set",
		}),
		rejections: f.NewCounter(prometheus.CounterOpts{
			Name: "cinelens_library_comparison_rejections_total",
			Help: "Comparison additions refused because the set was full",
		}),
	}
}

func (m *Metrics) observeSets(favorites, comparison int) {
	if m == nil {
		return
	}
	m.favorites.Set(float64(favorites))
	m.comparison.Set(float64(comparison))
}

func (m *Metrics) observeRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}
