// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values used by the recorders.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"

	AuthMissingToken = "missing_token"
	AuthInvalidToken = "invalid_token"
	AuthUnknownUser  = "unknown_user"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(outcome string)
	IncAuthFailure(reason string)

	// Post metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()

	// Vote engine metrics
	IncVoteCast(outcome string) // outcome: "created", "unchanged", "updated"
	IncVoteRetracted()
	IncVoteRetry()
	IncVoteConflict()

	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)
	IncRateLimited(scope string)
}
