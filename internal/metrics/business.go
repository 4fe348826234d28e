package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assignmentsCreated = promauto.NewCounter(
		prometheusCounterOpts("assignments_created_total", "Total number of created assignments"),
	)
	assignmentsRemoved = promauto.NewCounter(
		prometheusCounterOpts("assignments_removed_total", "Total number of removed assignments"),
	)
	eligibilityRejections = promauto.NewCounterVec(
		prometheusCounterOpts("assignment_eligibility_rejections_total", "Assignment requests rejected by eligibility rules"),
		[]string{"reason"},
	)
	concurrencyConflicts = promauto.NewCounter(
		prometheusCounterOpts("assignment_concurrency_conflicts_total", "Assignment creations that hit a concurrent modification"),
	)
	statusCascades = promauto.NewCounterVec(
		prometheusCounterOpts("collaborator_status_cascades_total", "Collaborator status changes caused by assignment lifecycle"),
		[]string{"status"},
	)
)

// IncAssignmentsCreated увеличивает счётчик созданных назначений.
func IncAssignmentsCreated() {
	assignmentsCreated.Inc()
}

// AddAssignmentsRemoved увеличивает счётчик удалённых назначений.
func AddAssignmentsRemoved(delta int) {
	if delta <= 0 {
		return
	}
	assignmentsRemoved.Add(float64(delta))
}

// IncEligibilityRejections учитывает отказ по причине.
func IncEligibilityRejections(reason string) {
	eligibilityRejections.WithLabelValues(reason).Inc()
}

func IncConcurrencyConflicts() {
	concurrencyConflicts.Inc()
}

// AddStatusCascades учитывает сотрудников, переведённых в статус каскадом.
func AddStatusCascades(status string, delta int64) {
	if delta <= 0 {
		return
	}
	statusCascades.WithLabelValues(status).Add(float64(delta))
}

func prometheusCounterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: "trouvemamission",
		Name:      name,
		Help:      help,
	}
}
