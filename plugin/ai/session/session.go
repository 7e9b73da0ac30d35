// Package session holds the per-user dialogue phase between turns.
package session

import "context"

// Phase is the position of a user's session in the dialogue state machine.
type Phase string

const (
	// PhaseNormal answers autonomously. Entry state, and the only state
	// reachable after a completed or abandoned escalation.
	PhaseNormal Phase = "NORMAL"
	// PhaseAwaitingConfirm: a handoff was offered, waiting for yes/no.
	PhaseAwaitingConfirm Phase = "AWAITING_CONFIRM"
	// PhaseAwaitingContact: handoff confirmed, waiting for a contact method.
	PhaseAwaitingContact Phase = "AWAITING_CONTACT"
)

// Pending carries the escalation payload between turns: the message that
// triggered the offer and the reason shown to the operator.
type Pending struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// Session is a tagged variant: Pending is present if and only if the phase
// is not NORMAL. Use Normalize to enforce the invariant before storing.
type Session struct {
	Phase   Phase    `json:"phase"`
	Pending *Pending `json:"pending,omitempty"`
}

// Normal returns the initial session state.
func Normal() Session {
	return Session{Phase: PhaseNormal}
}

// Normalize enforces the phase/pending invariant. A NORMAL session carries no
// payload; an AWAITING_* session without a payload collapses to NORMAL.
func (s Session) Normalize() Session {
	if s.Phase == PhaseNormal {
		s.Pending = nil
		return s
	}
	if s.Pending == nil {
		s.Phase = PhaseNormal
	}
	return s
}

// Store persists sessions keyed by user id with automatic expiry.
// An absent or expired entry reads as NORMAL.
type Store interface {
	Get(ctx context.Context, userID string) (Session, error)
	Put(ctx context.Context, userID string, sess Session) error

	// WithLock serializes processing for a single user id, so duplicate
	// deliveries of the same message cannot race on read-modify-write.
	// Different user ids proceed concurrently.
	WithLock(userID string, fn func())
}
