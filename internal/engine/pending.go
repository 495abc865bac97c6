package engine

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
)

// ActionState is the lifecycle of an optimistic action.
type ActionState int

const (
	ActionPending ActionState = iota
	ActionCommitted
	ActionRolledBack
)

func (s ActionState) String() string {
	switch s {
	case ActionPending:
		return "pending"
	case ActionCommitted:
		return "committed"
	case ActionRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("ActionState(%d)", int(s))
	}
}

// ErrActionResolved is returned when committing or rolling back an action
// that already left the pending state.
var ErrActionResolved = stderrors.New("action already resolved")

// StatusWriter is the store capability a PendingAction needs.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Status, error)
}

// PendingAction is one optimistic status change waiting for the remote side.
// It is never persisted.
type PendingAction struct {
	ProfileID string
	Action    models.Action
	Target    models.Status

	// Prior is the status observed when the optimistic write was applied.
	// Found is false when the profile was not in the store.
	Prior models.Status
	Found bool

	State ActionState
}

// NewPendingAction prepares an action on id.
func NewPendingAction(id string, action models.Action) (*PendingAction, error) {
	if id == "" {
		return nil, errors.NewValidationError("id", "required")
	}
	if !action.Valid() {
		return nil, errors.NewValidationError("action", fmt.Sprintf("unknown action %q", action))
	}
	return &PendingAction{ProfileID: id, Action: action, Target: action.TargetStatus()}, nil
}

// RollbackTarget is the status a rolled back action restores. It is always
// incoming, whatever Prior was.
func (p *PendingAction) RollbackTarget() models.Status {
	return models.StatusIncoming
}

// Apply performs the optimistic write. A missing profile is not an error.
func (p *PendingAction) Apply(ctx context.Context, w StatusWriter) error {
	if p.State != ActionPending {
		return ErrActionResolved
	}
	prior, err := w.UpdateStatus(ctx, p.ProfileID, p.Target)
	if errors.IsNotFound(err) {
		logger.FromContext(ctx).WithPrefix("engine").Debug("optimistic %s: profile %s not in store", p.Action, p.ProfileID)
		return nil
	}
	if err != nil {
		return err
	}
	p.Prior, p.Found = prior, true
	return nil
}

// Commit marks the optimistic state final.
func (p *PendingAction) Commit() error {
	if p.State != ActionPending {
		return ErrActionResolved
	}
	p.State = ActionCommitted
	return nil
}

// Rollback writes RollbackTarget back and marks the action rolled back. The
// state moves to rolled back even when the write fails, so a failed rollback
// is still reported once.
func (p *PendingAction) Rollback(ctx context.Context, w StatusWriter) error {
	if p.State != ActionPending {
		return ErrActionResolved
	}
	p.State = ActionRolledBack

	_, err := w.UpdateStatus(ctx, p.ProfileID, p.RollbackTarget())
	if errors.IsNotFound(err) {
		logger.FromContext(ctx).WithPrefix("engine").Debug("rollback %s: profile %s not in store", p.Action, p.ProfileID)
		return nil
	}
	return err
}
