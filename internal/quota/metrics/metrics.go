package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QuotaAdmissionsTotal *prometheus.CounterVec
	QuotaRejectionsTotal prometheus.Counter
	QuotaCommitConflicts prometheus.Counter
	QuotaMonthlyResets   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		QuotaAdmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poagate_quota_admissions_total",
			Help: "Validation attempts admitted by the quota gate, by tier",
		}, []string{"tier"}),
		QuotaRejectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poagate_quota_rejections_total",
			Help: "Validation attempts rejected for exceeding the monthly cap",
		}),
		QuotaCommitConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poagate_quota_commit_conflicts_total",
			Help: "Conditional quota writes that lost a race and were retried",
		}),
		QuotaMonthlyResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poagate_quota_monthly_resets_total",
			Help: "Calendar rollovers applied on first use in a new month",
		}),
	}
}

func (m *Metrics) IncAdmission(tier string) {
	m.QuotaAdmissionsTotal.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncRejection() {
	m.QuotaRejectionsTotal.Inc()
}

func (m *Metrics) IncCommitConflict() {
	m.QuotaCommitConflicts.Inc()
}

func (m *Metrics) IncMonthlyReset() {
	m.QuotaMonthlyResets.Inc()
}
