package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SignUps                uint64
	SignUpsFailed          uint64
	SignIns                uint64
	SignInsFailed          uint64
	TokenRefreshes         uint64
	TokenRefreshesFailed   uint64
	SignOuts               uint64
	AuthRateLimited        uint64
	PollsCreated           uint64
	VotesCast              uint64
	ResultsDurationCount   uint64
	ResultsDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	signUps                uint64
	signUpsFailed          uint64
	signIns                uint64
	signInsFailed          uint64
	tokenRefreshes         uint64
	tokenRefreshesFailed   uint64
	signOuts               uint64
	authRateLimited        uint64
	pollsCreated           uint64
	votesCast              uint64
	resultsDurationCount   uint64
	resultsDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SignUps:                atomic.LoadUint64(&m.signUps),
		SignUpsFailed:          atomic.LoadUint64(&m.signUpsFailed),
		SignIns:                atomic.LoadUint64(&m.signIns),
		SignInsFailed:          atomic.LoadUint64(&m.signInsFailed),
		TokenRefreshes:         atomic.LoadUint64(&m.tokenRefreshes),
		TokenRefreshesFailed:   atomic.LoadUint64(&m.tokenRefreshesFailed),
		SignOuts:               atomic.LoadUint64(&m.signOuts),
		AuthRateLimited:        atomic.LoadUint64(&m.authRateLimited),
		PollsCreated:           atomic.LoadUint64(&m.pollsCreated),
		VotesCast:              atomic.LoadUint64(&m.votesCast),
		ResultsDurationCount:   atomic.LoadUint64(&m.resultsDurationCount),
		ResultsDurationTotalNs: atomic.LoadInt64(&m.resultsDurationTotalNs),
	}
}

// IncSignUp counts a sign-up attempt by outcome.
func (m *InMemoryRecorder) IncSignUp(status string) {
	incByStatus(status, &m.signUps, &m.signUpsFailed)
}

// IncSignIn counts a sign-in attempt by outcome.
func (m *InMemoryRecorder) IncSignIn(status string) {
	incByStatus(status, &m.signIns, &m.signInsFailed)
}

// IncTokenRefresh counts a refresh attempt by outcome.
func (m *InMemoryRecorder) IncTokenRefresh(status string) {
	incByStatus(status, &m.tokenRefreshes, &m.tokenRefreshesFailed)
}

// IncSignOut increments the sign-out counter.
func (m *InMemoryRecorder) IncSignOut() {
	atomic.AddUint64(&m.signOuts, 1)
}

// IncAuthRateLimited increments the rejected auth request counter.
func (m *InMemoryRecorder) IncAuthRateLimited() {
	atomic.AddUint64(&m.authRateLimited, 1)
}

// IncPollCreated increments the poll created counter.
func (m *InMemoryRecorder) IncPollCreated() {
	atomic.AddUint64(&m.pollsCreated, 1)
}

// IncVoteCast increments the vote counter.
func (m *InMemoryRecorder) IncVoteCast() {
	atomic.AddUint64(&m.votesCast, 1)
}

// ObserveResultsDuration records how long a results aggregation took.
func (m *InMemoryRecorder) ObserveResultsDuration(duration time.Duration) {
	atomic.AddUint64(&m.resultsDurationCount, 1)
	atomic.AddInt64(&m.resultsDurationTotalNs, duration.Nanoseconds())
}

func incByStatus(status string, success, failed *uint64) {
	if status == StatusSuccess {
		atomic.AddUint64(success, 1)
		return
	}
	atomic.AddUint64(failed, 1)
}
