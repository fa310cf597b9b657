package store

import (
	"context"

	"isleport/internal/org"
	"isleport/internal/org/models"
	id "isleport/pkg/domain"
)

// Store is the full read-write surface over the org graph. It includes
// the read-only Directory consumed by other modules.
//
// Implementations return sentinel errors (pkg/platform/sentinel); the
// service layer translates them into domain errors.
type Store interface {
	org.Directory

	CreateRegion(ctx context.Context, region *models.Region) error
	FindRegion(ctx context.Context, regionID id.RegionID) (*models.Region, error)
	ListRegions(ctx context.Context) ([]*models.Region, error)
	// DeleteRegion removes a region. Returns sentinel.ErrInvalidState when
	// the region still owns islands.
	DeleteRegion(ctx context.Context, regionID id.RegionID) error

	CreateIsland(ctx context.Context, island *models.Island) error
	FindIsland(ctx context.Context, islandID id.IslandID) (*models.Island, error)
	ListIslands(ctx context.Context, regionID id.RegionID) ([]*models.Island, error)
	DeleteIsland(ctx context.Context, islandID id.IslandID) error

	// CreateUser persists the user together with its membership rows.
	CreateUser(ctx context.Context, user *models.User, regionIDs []id.RegionID, islandIDs []id.IslandID) error
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
	// UpdateUserVerification persists a verification status change.
	UpdateUserVerification(ctx context.Context, userID id.UserID, status id.VerifiedStatus) error

	// Snapshot materializes the whole graph for pure traversal.
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}
