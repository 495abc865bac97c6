package models

import "time"

// Action is a user decision on an incoming profile.
type Action string

const (
	ActionLike Action = "like"
	ActionPass Action = "pass"
)

func (a Action) Valid() bool {
	return a == ActionLike || a == ActionPass
}

// TargetStatus is the status an action moves a profile to.
func (a Action) TargetStatus() Status {
	if a == ActionLike {
		return StatusMutual
	}
	return StatusPassed
}

// UnblurState is the derived state of the unblur window. ExpiresAt is only
// set while the window is active.
type UnblurState struct {
	Active    bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}
