// Package service implements org graph administration: regions, islands,
// user registration and verification.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"isleport/internal/fanout/events"
	"isleport/internal/org/models"
	"isleport/internal/org/store"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/requestcontext"
)

// Notifier triggers notification fan-out for org events.
type Notifier interface {
	FanOut(ctx context.Context, event events.Event) error
}

type noopNotifier struct{}

func (noopNotifier) FanOut(context.Context, events.Event) error { return nil }

type Service struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Service)

// WithNotifier wires the fan-out engine for UserSignedUp events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func New(store store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: noopNotifier{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateRegion(ctx context.Context, name string) (*models.Region, error) {
	region, err := models.NewRegion(id.RegionID(uuid.New()), name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRegion(ctx, region); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "region name already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create region")
	}
	s.logger.InfoContext(ctx, "region created", "region_id", region.ID, "name", region.Name)
	return region, nil
}

func (s *Service) GetRegion(ctx context.Context, regionID id.RegionID) (*models.Region, error) {
	region, err := s.store.FindRegion(ctx, regionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "region not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get region")
	}
	return region, nil
}

func (s *Service) ListRegions(ctx context.Context) ([]*models.Region, error) {
	regions, err := s.store.ListRegions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list regions")
	}
	return regions, nil
}

// DeleteRegion removes a region. A region still owning islands cannot be
// deleted.
func (s *Service) DeleteRegion(ctx context.Context, regionID id.RegionID) error {
	if err := s.store.DeleteRegion(ctx, regionID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "region not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.New(dErrors.CodeConflict, "region still owns islands")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "delete region")
		}
	}
	s.logger.InfoContext(ctx, "region deleted", "region_id", regionID)
	return nil
}

func (s *Service) CreateIsland(ctx context.Context, regionID id.RegionID, name string) (*models.Island, error) {
	island, err := models.NewIsland(id.IslandID(uuid.New()), regionID, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateIsland(ctx, island); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "region not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "island name already in use within region")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create island")
		}
	}
	s.logger.InfoContext(ctx, "island created", "island_id", island.ID, "region_id", regionID, "name", island.Name)
	return island, nil
}

func (s *Service) ListIslands(ctx context.Context, regionID id.RegionID) ([]*models.Island, error) {
	if _, err := s.GetRegion(ctx, regionID); err != nil {
		return nil, err
	}
	islands, err := s.store.ListIslands(ctx, regionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list islands")
	}
	return islands, nil
}

func (s *Service) DeleteIsland(ctx context.Context, islandID id.IslandID) error {
	if err := s.store.DeleteIsland(ctx, islandID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "island not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete island")
	}
	s.logger.InfoContext(ctx, "island deleted", "island_id", islandID)
	return nil
}

// RegisterUser creates a user with its memberships and fans out a
// UserSignedUp event to superadmins and the admins of the declared
// regions. Fan-out failure after the committed registration surfaces as
// a partial-fanout error; the registration itself stands.
func (s *Service) RegisterUser(ctx context.Context, name string, role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) (*models.User, error) {
	if err := validateMemberships(role, regionIDs, islandIDs); err != nil {
		return nil, err
	}

	user, err := models.NewUser(id.UserID(uuid.New()), name, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user, regionIDs, islandIDs); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "membership target not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create user")
		}
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	err = s.notifier.FanOut(ctx, events.Event{
		Kind: events.KindUserSignedUp,
		Actor: id.Actor{
			UserID:    user.ID,
			Role:      user.Role,
			Verified:  user.Verified,
			RegionIDs: regionIDs,
			IslandIDs: islandIDs,
		},
		Title:      user.Name,
		OccurredAt: requestcontext.Now(ctx),
	})
	if err != nil {
		return user, dErrors.Wrap(err, dErrors.CodePartialFanout, "user registered but notification fan-out failed")
	}
	return user, nil
}

func validateMemberships(role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) error {
	switch role {
	case id.RoleUser:
		if len(regionIDs) > 0 {
			return dErrors.New(dErrors.CodeValidation, "users hold island memberships, not region memberships")
		}
	case id.RoleAdmin:
		if len(islandIDs) > 0 {
			return dErrors.New(dErrors.CodeValidation, "admins hold region memberships, not island memberships")
		}
	case id.RoleSuperadmin:
		if len(regionIDs) > 0 || len(islandIDs) > 0 {
			return dErrors.New(dErrors.CodeValidation, "superadmins carry no scoping memberships")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidActor, "unknown role "+string(role))
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get user")
	}
	return user, nil
}

// RequestVerification moves a user from UNVERIFIED to VERIFICATION_PENDING.
func (s *Service) RequestVerification(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.CanRequestVerification(); err != nil {
		return nil, err
	}
	user.ApplyVerificationRequest()

	if err := s.store.UpdateUserVerification(ctx, userID, user.Verified); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update verification")
	}
	s.logger.InfoContext(ctx, "verification requested", "user_id", userID)
	return user, nil
}

// VerifyUser moves a user from VERIFICATION_PENDING to VERIFIED.
func (s *Service) VerifyUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.CanVerify(); err != nil {
		return nil, err
	}
	user.ApplyVerification()

	if err := s.store.UpdateUserVerification(ctx, userID, user.Verified); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update verification")
	}
	s.logger.InfoContext(ctx, "user verified", "user_id", userID)
	return user, nil
}
