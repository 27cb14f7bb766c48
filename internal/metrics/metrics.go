package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "photohunt"

// Metrics holds the workflow collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	photosSubmitted    prometheus.Counter
	photoReviews       *prometheus.CounterVec
	scoreApplyFailures prometheus.Counter
	teamPointsAwarded  prometheus.Counter
	scoreEventsPending prometheus.Gauge
	blobUploadFailures prometheus.Counter
	submitRateLimited  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		photosSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_submitted_total",
			Help:      "Photos accepted into the review queue.",
		}),
		photoReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_reviews_total",
			Help:      "Review attempts by decision and result.",
		}, []string{"decision", "result"}),
		scoreApplyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_apply_failures_total",
			Help:      "Failed attempts to apply a score event after approval.",
		}),
		teamPointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_points_awarded_total",
			Help:      "Points added to teams from approved photos.",
		}),
		scoreEventsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score_events_pending",
			Help:      "Score events waiting to be applied, as of the last relay pass.",
		}),
		blobUploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_upload_failures_total",
			Help:      "Photo uploads rejected by the blob store.",
		}),
		submitRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_rate_limited_total",
			Help:      "Photo submissions refused by the per-photographer limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.photosSubmitted,
			m.photoReviews,
			m.scoreApplyFailures,
			m.teamPointsAwarded,
			m.scoreEventsPending,
			m.blobUploadFailures,
			m.submitRateLimited,
		)
	}
	return m
}

func (m *Metrics) PhotoSubmitted() {
	if m == nil {
		return
	}
	m.photosSubmitted.Inc()
}

func (m *Metrics) PhotoReviewed(decision, result string) {
	if m == nil {
		return
	}
	m.photoReviews.WithLabelValues(decision, result).Inc()
}

func (m *Metrics) ScoreApplyFailed() {
	if m == nil {
		return
	}
	m.scoreApplyFailures.Inc()
}

func (m *Metrics) PointsAwarded(points int) {
	if m == nil || points <= 0 {
		return
	}
	m.teamPointsAwarded.Add(float64(points))
}

func (m *Metrics) SetPendingScoreEvents(count int64) {
	if m == nil {
		return
	}
	m.scoreEventsPending.Set(float64(count))
}

func (m *Metrics) BlobUploadFailed() {
	if m == nil {
		return
	}
	m.blobUploadFailures.Inc()
}

func (m *Metrics) SubmitRateLimited() {
	if m == nil {
		return
	}
	m.submitRateLimited.Inc()
}
