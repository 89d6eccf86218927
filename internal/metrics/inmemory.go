package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	Logins          map[string]uint64
	AuthFailures    map[string]uint64
	PostsCreated    uint64
	PostsUpdated    uint64
	PostsDeleted    uint64
	VotesCast       map[string]uint64
	VotesRetracted  uint64
	VoteRetries     uint64
	VoteConflicts   uint64
	Requests        uint64
	RateLimited     map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	postsCreated    uint64
	postsUpdated    uint64
	postsDeleted    uint64
	votesRetracted  uint64
	voteRetries     uint64
	voteConflicts   uint64
	requests        uint64

	mu           sync.Mutex
	logins       map[string]uint64
	authFailures map[string]uint64
	votesCast    map[string]uint64
	rateLimited  map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		logins:       make(map[string]uint64),
		authFailures: make(map[string]uint64),
		votesCast:    make(map[string]uint64),
		rateLimited:  make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		Logins:          maps.Clone(m.logins),
		AuthFailures:    maps.Clone(m.authFailures),
		PostsCreated:    atomic.LoadUint64(&m.postsCreated),
		PostsUpdated:    atomic.LoadUint64(&m.postsUpdated),
		PostsDeleted:    atomic.LoadUint64(&m.postsDeleted),
		VotesCast:       maps.Clone(m.votesCast),
		VotesRetracted:  atomic.LoadUint64(&m.votesRetracted),
		VoteRetries:     atomic.LoadUint64(&m.voteRetries),
		VoteConflicts:   atomic.LoadUint64(&m.voteConflicts),
		Requests:        atomic.LoadUint64(&m.requests),
		RateLimited:     maps.Clone(m.rateLimited),
	}
}

func (m *InMemoryRecorder) incLabel(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.incLabel(m.logins, outcome)
}

// IncAuthFailure counts a rejected bearer token by reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.incLabel(m.authFailures, reason)
}

// IncPostCreated increments post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostUpdated increments post updated counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	atomic.AddUint64(&m.postsUpdated, 1)
}

// IncPostDeleted increments post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncVoteCast counts a cast by outcome.
func (m *InMemoryRecorder) IncVoteCast(outcome string) {
	m.incLabel(m.votesCast, outcome)
}

// IncVoteRetracted increments the retract counter.
func (m *InMemoryRecorder) IncVoteRetracted() {
	atomic.AddUint64(&m.votesRetracted, 1)
}

// IncVoteRetry counts a cast that re-entered the state machine after a race.
func (m *InMemoryRecorder) IncVoteRetry() {
	atomic.AddUint64(&m.voteRetries, 1)
}

// IncVoteConflict counts casts that gave up after exhausting retries.
func (m *InMemoryRecorder) IncVoteConflict() {
	atomic.AddUint64(&m.voteConflicts, 1)
}

// ObserveRequest counts handled requests.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.requests, 1)
}

// IncRateLimited counts rejected requests by limiter scope.
func (m *InMemoryRecorder) IncRateLimited(scope string) {
	m.incLabel(m.rateLimited, scope)
}
