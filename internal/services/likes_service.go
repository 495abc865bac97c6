package services

import (
	"context"

	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/flags"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/store"
	"github.com/vytor/likescenter/internal/unblur"
)

// LikesView is what a client renders for one tab of the likes screen.
type LikesView struct {
	Status   models.Status    `json:"status"`
	Seq      uint64           `json:"seq"`
	Profiles []models.Profile `json:"profiles"`
	HasMore  bool             `json:"has_more"`
	Blur     BlurView         `json:"blur"`
}

// BlurView says whether profile content must be hidden. Remaining is the
// mm:ss countdown while an unblur window is running.
type BlurView struct {
	Enabled   bool               `json:"enabled"`
	Blurred   bool               `json:"blurred"`
	Unblur    models.UnblurState `json:"unblur"`
	Remaining string             `json:"remaining,omitempty"`
}

// LikesService is the presentation-facing facade over the sync core.
type LikesService interface {
	View(ctx context.Context, status models.Status) (*LikesView, error)
	ViewOf(ctx context.Context, snap models.Snapshot) *LikesView
	Watch(ctx context.Context, status models.Status) (*store.Subscription, error)
	Refresh(ctx context.Context) (engine.Result, error)
	LoadMore(ctx context.Context) (engine.Result, error)
	Like(ctx context.Context, id string) error
	Pass(ctx context.Context, id string) error
	ActivateUnblur(ctx context.Context) (BlurView, error)
	Blur(ctx context.Context) BlurView
}

type likesService struct {
	store  *store.Store
	engine *engine.Engine
	window *unblur.Window
	flags  *flags.Cache
}

// NewLikesService creates a new LikesService
func NewLikesService(st *store.Store, eng *engine.Engine, window *unblur.Window, flagCache *flags.Cache) LikesService {
	return &likesService{store: st, engine: eng, window: window, flags: flagCache}
}

func (s *likesService) View(ctx context.Context, status models.Status) (*LikesView, error) {
	log := logger.FromContext(ctx)
	log.Debug("building likes view: status=%s", status)

	if !status.Valid() {
		return nil, errors.NewValidationError("status", "must be incoming, mutual or passed")
	}

	profiles, err := s.store.Query(ctx, status)
	if err != nil {
		log.Error("failed to query profiles: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return s.ViewOf(ctx, models.Snapshot{Seq: s.store.Version(), Filter: status, Profiles: profiles}), nil
}

func (s *likesService) ViewOf(ctx context.Context, snap models.Snapshot) *LikesView {
	profiles := snap.Profiles
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return &LikesView{
		Status:   snap.Filter,
		Seq:      snap.Seq,
		Profiles: profiles,
		HasMore:  s.engine.Cursor() != nil,
		Blur:     s.Blur(ctx),
	}
}

func (s *likesService) Watch(ctx context.Context, status models.Status) (*store.Subscription, error) {
	logger.FromContext(ctx).Debug("watching likes: status=%s", status)
	return s.store.Subscribe(ctx, status)
}

func (s *likesService) Refresh(ctx context.Context) (engine.Result, error) {
	res, err := s.engine.Refresh(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("refresh failed: %v", err)
	}
	return res, err
}

func (s *likesService) LoadMore(ctx context.Context) (engine.Result, error) {
	res, err := s.engine.LoadMore(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("load more failed: %v", err)
	}
	return res, err
}

func (s *likesService) Like(ctx context.Context, id string) error {
	return userFacing(s.engine.Like(ctx, id), ActionFailureMessage(models.ActionLike))
}

func (s *likesService) Pass(ctx context.Context, id string) error {
	return userFacing(s.engine.Pass(ctx, id), ActionFailureMessage(models.ActionPass))
}

// ActionFailureMessage is the text shown to a user whose action was rolled
// back.
func ActionFailureMessage(action models.Action) string {
	if action == models.ActionLike {
		return "Failed to like user"
	}
	return "Failed to pass user"
}

func (s *likesService) ActivateUnblur(ctx context.Context) (BlurView, error) {
	if _, err := s.window.Activate(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to activate unblur: %v", err)
		return BlurView{}, errors.NewInternalError(err)
	}
	return s.Blur(ctx), nil
}

// Blur combines the feature flag with the unblur window. With the flag off
// nothing is blurred and no countdown is shown.
func (s *likesService) Blur(ctx context.Context) BlurView {
	enabled, err := s.flags.Enabled(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("using last known blur flag (%t): %v", enabled, err)
	}
	if !enabled {
		return BlurView{}
	}

	now := s.window.Now()
	view := BlurView{Enabled: true, Unblur: s.window.State(now)}
	view.Blurred = !view.Unblur.Active
	if left, ok := s.window.Remaining(now); ok {
		view.Remaining = unblur.FormatRemaining(left)
	}
	return view
}

// userFacing replaces the message of a remote failure with msg, keeping the
// code and cause.
func userFacing(err error, msg string) error {
	if err == nil || !errors.IsRemote(err) {
		return err
	}
	appErr := errors.As(err)
	return &errors.AppError{Code: appErr.Code, Message: msg, Status: appErr.Status, Err: appErr.Err}
}
