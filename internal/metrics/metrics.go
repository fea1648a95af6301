// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels used by the auth counters.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncSignUp(status string)
	IncSignIn(status string)
	IncTokenRefresh(status string)
	IncSignOut()
	IncAuthRateLimited()

	// Poll metrics
	IncPollCreated()
	IncVoteCast()
	ObserveResultsDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
