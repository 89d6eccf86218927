package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()          {}
func (n *NoopRecorder) IncLogin(string)             {}
func (n *NoopRecorder) IncAuthFailure(string)       {}
func (n *NoopRecorder) IncPostCreated()             {}
func (n *NoopRecorder) IncPostUpdated()             {}
func (n *NoopRecorder) IncPostDeleted()             {}
func (n *NoopRecorder) IncVoteCast(string)          {}
func (n *NoopRecorder) IncVoteRetracted()           {}
func (n *NoopRecorder) IncVoteRetry()               {}
func (n *NoopRecorder) IncVoteConflict()            {}
func (n *NoopRecorder) IncRateLimited(scope string) {}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}
