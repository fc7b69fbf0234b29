package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DraftMetrics tracks draft session lifecycle outcomes.
type DraftMetrics struct {
	commits      *prometheus.CounterVec
	discards     prometheus.Counter
	itemOutcomes *prometheus.CounterVec
	commitTime   prometheus.Histogram
}

// NewDraftMetrics registers the draft session metrics on the provided registerer.
func NewDraftMetrics(reg prometheus.Registerer) *DraftMetrics {
	if reg == nil {
		return &DraftMetrics{}
	}
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_commits_total",
		Help: "Committed draft sessions, labeled by result.",
	}, []string{"result"})
	discards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "draft_discards_total",
		Help: "Discarded draft sessions.",
	})
	itemOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_item_outcomes_total",
		Help: "Per-item reconciliation outcomes, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})
	commitTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "draft_commit_duration_seconds",
		Help:    "Duration of draft commit reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(commits, discards, itemOutcomes, commitTime)
	return &DraftMetrics{
		commits:      commits,
		discards:     discards,
		itemOutcomes: itemOutcomes,
		commitTime:   commitTime,
	}
}

// IncCommit increments the commit counter for the given result label.
func (d *DraftMetrics) IncCommit(result string) {
	if d == nil || d.commits == nil {
		return
	}
	d.commits.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncDiscard increments the discard counter.
func (d *DraftMetrics) IncDiscard() {
	if d == nil || d.discards == nil {
		return
	}
	d.discards.Inc()
}

// IncItemOutcome records one reconciled staged item.
func (d *DraftMetrics) IncItemOutcome(operation, outcome string) {
	if d == nil || d.itemOutcomes == nil {
		return
	}
	d.itemOutcomes.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveCommitDuration records how long a commit reconciliation took.
func (d *DraftMetrics) ObserveCommitDuration(duration time.Duration) {
	if d == nil || d.commitTime == nil {
		return
	}
	d.commitTime.Observe(duration.Seconds())
}
