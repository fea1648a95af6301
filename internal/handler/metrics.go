package handler

import (
	"fmt"
	"net/http"

	"github.com/pollster/pollster/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "pollster_auth_signups_total{status=\"success\"} %d\n", snap.SignUps)
	writeMetric(w, "pollster_auth_signups_total{status=\"failed\"} %d\n", snap.SignUpsFailed)
	writeMetric(w, "pollster_auth_signins_total{status=\"success\"} %d\n", snap.SignIns)
	writeMetric(w, "pollster_auth_signins_total{status=\"failed\"} %d\n", snap.SignInsFailed)
	writeMetric(w, "pollster_auth_refreshes_total{status=\"success\"} %d\n", snap.TokenRefreshes)
	writeMetric(w, "pollster_auth_refreshes_total{status=\"failed\"} %d\n", snap.TokenRefreshesFailed)
	writeMetric(w, "pollster_auth_signouts_total %d\n", snap.SignOuts)
	writeMetric(w, "pollster_auth_rate_limited_total %d\n", snap.AuthRateLimited)

	writeMetric(w, "pollster_polls_created_total %d\n", snap.PollsCreated)
	writeMetric(w, "pollster_votes_cast_total %d\n", snap.VotesCast)
	writeMetric(w, "pollster_results_duration_seconds_count %d\n", snap.ResultsDurationCount)
	writeMetric(w, "pollster_results_duration_seconds_sum %.6f\n", float64(snap.ResultsDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
