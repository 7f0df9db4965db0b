package apply

import (
	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics records apply outcomes for scraping (SPEC_FULL.md ambient
// stack), grounded on the teacher's use of
// github.com/prometheus/client_golang for reconcile-loop metrics.
type metrics struct {
	actionsTotal *prometheus.CounterVec
}

var defaultRegisterer = prometheus.DefaultRegisterer

func newMetrics() *metrics {
	m := &metrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lettasync",
			Subsystem: "apply",
			Name:      "actions_total",
			Help:      "Count of apply executor actions by kind, action type, and outcome.",
		}, []string{"kind", "action", "outcome"}),
	}
	// Registering twice (e.g. across test runs in the same process)
	// would panic; AlreadyRegisteredError is safe to ignore.
	if err := defaultRegisterer.Register(m.actionsTotal); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.actionsTotal = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return m
}

func (m *metrics) observeStart(action v1.PlanAction) {}

func (m *metrics) observeResult(action v1.PlanAction, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.actionsTotal.WithLabelValues(string(action.ResourceKind), string(action.Type), outcome).Inc()
}
