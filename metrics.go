package hxbind

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts component activity. A nil *Metrics records nothing.
type Metrics struct {
	sets         *prometheus.CounterVec
	renders      *prometheus.CounterVec
	renderErrors *prometheus.CounterVec
	events       *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
}

// NewMetrics creates the hxbind collectors and registers them with r.
// A nil r leaves them unregistered.
func NewMetrics(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		sets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxbind",
				Subsystem: "component",
				Name:      "sets_total",
				Help:      "Total number of model writes that changed a component",
			},
			[]string{"component"},
		),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxbind",
				Subsystem: "component",
				Name:      "renders_total",
				Help:      "Total number of successful component renders",
			},
			[]string{"component"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxbind",
				Subsystem: "component",
				Name:      "render_errors_total",
				Help:      "Total number of failed component renders",
			},
			[]string{"component"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxbind",
				Subsystem: "dom",
				Name:      "events_total",
				Help:      "Total number of DOM events that carried a new value",
			},
			[]string{"type"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxbind",
				Subsystem: "component",
				Name:      "refreshes_total",
				Help:      "Total number of component refreshes by result",
			},
			[]string{"component", "result"},
		),
	}
	if r != nil {
		r.MustRegister(m.sets, m.renders, m.renderErrors, m.events, m.refreshes)
	}
	return m
}

func (m *Metrics) observeSet(id string) {
	if m == nil {
		return
	}
	m.sets.WithLabelValues(id).Inc()
}

func (m *Metrics) observeRender(id string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(id).Inc()
}

func (m *Metrics) observeRenderError(id string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(id).Inc()
}

func (m *Metrics) observeEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

func (m *Metrics) observeRefresh(id, result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(id, result).Inc()
}
