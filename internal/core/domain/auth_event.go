package domain

import "time"

// AuthAction identifies the kind of credential-lifecycle activity recorded
// in the audit trail.
type AuthAction string

const (
	ActionRegistered       AuthAction = "registered"
	ActionLoginSucceeded   AuthAction = "login_succeeded"
	ActionLoginFailed      AuthAction = "login_failed"
	ActionSessionCreated   AuthAction = "session_created"
	ActionSessionDestroyed AuthAction = "session_destroyed"
	ActionResetRequested   AuthAction = "reset_requested"
	ActionResetCompleted   AuthAction = "reset_completed"
)

// AuthEvent is a single audit-trail entry. It deliberately carries no
// passwords, hashes, or token values — only who did what, and when.
type AuthEvent struct {
	Email     string
	Action    AuthAction
	RequestID string
	Timestamp time.Time
}
