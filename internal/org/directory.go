// Package org owns the organizational graph: regions, islands, users and
// their memberships. Other modules consume it read-only through Directory.
package org

import (
	"context"

	id "isleport/pkg/domain"
)

//go:generate mockgen -source=directory.go -destination=mocks/directory_mock.go -package=mocks

// Directory is the read-only view of the org graph consumed by the
// visibility resolver and the notification fan-out engine.
type Directory interface {
	// IslandsInRegions expands regions into their islands.
	IslandsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.IslandID, error)
	// UsersOnIslands expands islands into their member users.
	UsersOnIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.UserID, error)
	// RegionsOfIslands maps islands back to their owning regions.
	RegionsOfIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.RegionID, error)
	// UsersByRole lists all users holding a role.
	UsersByRole(ctx context.Context, role id.Role) ([]id.UserID, error)
	// AdminsInRegions lists ADMIN users with a membership in any of the regions.
	AdminsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.UserID, error)
	// RegionsOfUser lists a user's region memberships.
	RegionsOfUser(ctx context.Context, userID id.UserID) ([]id.RegionID, error)
	// IslandsOfUser lists a user's island memberships.
	IslandsOfUser(ctx context.Context, userID id.UserID) ([]id.IslandID, error)
}
