package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignUp is a no-op.
func (n *NoopRecorder) IncSignUp(status string) {}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(status string) {}

// IncTokenRefresh is a no-op.
func (n *NoopRecorder) IncTokenRefresh(status string) {}

// IncSignOut is a no-op.
func (n *NoopRecorder) IncSignOut() {}

// IncAuthRateLimited is a no-op.
func (n *NoopRecorder) IncAuthRateLimited() {}

// IncPollCreated is a no-op.
func (n *NoopRecorder) IncPollCreated() {}

// IncVoteCast is a no-op.
func (n *NoopRecorder) IncVoteCast() {}

// ObserveResultsDuration is a no-op.
func (n *NoopRecorder) ObserveResultsDuration(duration time.Duration) {}
