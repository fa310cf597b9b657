//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"isleport/internal/org/models"
	"isleport/internal/org/store"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"notifications", "documents", "inquiries", "notices",
		"user_islands", "user_regions", "users", "islands", "regions")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) addRegion(name string) *models.Region {
	region, err := models.NewRegion(id.RegionID(uuid.New()), name, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRegion(context.Background(), region))
	return region
}

func (s *PostgresStoreSuite) addIsland(regionID id.RegionID, name string) *models.Island {
	island, err := models.NewIsland(id.IslandID(uuid.New()), regionID, name, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateIsland(context.Background(), island))
	return island
}

func (s *PostgresStoreSuite) addUser(name string, role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) *models.User {
	user, err := models.NewUser(id.UserID(uuid.New()), name, role, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(context.Background(), user, regionIDs, islandIDs))
	return user
}

func (s *PostgresStoreSuite) TestRegionLifecycle() {
	ctx := context.Background()
	region := s.addRegion("North Sea")

	found, err := s.store.FindRegion(ctx, region.ID)
	s.Require().NoError(err)
	s.Equal(region.Name, found.Name)

	s.Run("duplicate name conflicts regardless of case", func() {
		dup, err := models.NewRegion(id.RegionID(uuid.New()), "NORTH SEA", time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.store.CreateRegion(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("delete blocked while islands remain", func() {
		island := s.addIsland(region.ID, "Outer Rock")
		s.ErrorIs(s.store.DeleteRegion(ctx, region.ID), sentinel.ErrInvalidState)

		s.Require().NoError(s.store.DeleteIsland(ctx, island.ID))
		s.Require().NoError(s.store.DeleteRegion(ctx, region.ID))

		_, err := s.store.FindRegion(ctx, region.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestIslandNameUniquePerRegion() {
	ctx := context.Background()
	north := s.addRegion("North")
	south := s.addRegion("South")
	s.addIsland(north.ID, "Harbor")

	dup, err := models.NewIsland(id.IslandID(uuid.New()), north.ID, "harbor", time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateIsland(ctx, dup), sentinel.ErrConflict)

	// Same name is fine in a different region.
	other, err := models.NewIsland(id.IslandID(uuid.New()), south.ID, "Harbor", time.Now())
	s.Require().NoError(err)
	s.NoError(s.store.CreateIsland(ctx, other))
}

func (s *PostgresStoreSuite) TestIslandRequiresExistingRegion() {
	island, err := models.NewIsland(id.IslandID(uuid.New()), id.RegionID(uuid.New()), "Orphan", time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateIsland(context.Background(), island), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDirectoryTraversal() {
	ctx := context.Background()
	region := s.addRegion("North")
	otherRegion := s.addRegion("South")
	island1 := s.addIsland(region.ID, "Harbor")
	island2 := s.addIsland(region.ID, "Cliff")
	strayIsland := s.addIsland(otherRegion.ID, "Stray")

	user1 := s.addUser("u1", id.RoleUser, nil, []id.IslandID{island1.ID})
	user2 := s.addUser("u2", id.RoleUser, nil, []id.IslandID{island1.ID, island2.ID})
	s.addUser("stray", id.RoleUser, nil, []id.IslandID{strayIsland.ID})
	admin := s.addUser("a1", id.RoleAdmin, []id.RegionID{region.ID}, nil)
	super := s.addUser("s1", id.RoleSuperadmin, nil, nil)

	islands, err := s.store.IslandsInRegions(ctx, []id.RegionID{region.ID})
	s.Require().NoError(err)
	s.ElementsMatch([]id.IslandID{island1.ID, island2.ID}, islands)

	users, err := s.store.UsersOnIslands(ctx, islands)
	s.Require().NoError(err)
	s.ElementsMatch([]id.UserID{user1.ID, user2.ID}, users)

	regions, err := s.store.RegionsOfIslands(ctx, []id.IslandID{island1.ID, island2.ID})
	s.Require().NoError(err)
	s.Equal([]id.RegionID{region.ID}, regions)

	admins, err := s.store.AdminsInRegions(ctx, []id.RegionID{region.ID})
	s.Require().NoError(err)
	s.Equal([]id.UserID{admin.ID}, admins)

	supers, err := s.store.UsersByRole(ctx, id.RoleSuperadmin)
	s.Require().NoError(err)
	s.Equal([]id.UserID{super.ID}, supers)

	adminRegions, err := s.store.RegionsOfUser(ctx, admin.ID)
	s.Require().NoError(err)
	s.Equal([]id.RegionID{region.ID}, adminRegions)

	userIslands, err := s.store.IslandsOfUser(ctx, user2.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]id.IslandID{island1.ID, island2.ID}, userIslands)
}

func (s *PostgresStoreSuite) TestDeleteIslandPrunesMemberships() {
	ctx := context.Background()
	region := s.addRegion("North")
	island := s.addIsland(region.ID, "Harbor")
	user := s.addUser("u1", id.RoleUser, nil, []id.IslandID{island.ID})

	s.Require().NoError(s.store.DeleteIsland(ctx, island.ID))

	islands, err := s.store.IslandsOfUser(ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(islands)
}

func (s *PostgresStoreSuite) TestVerificationUpdate() {
	ctx := context.Background()
	user := s.addUser("u1", id.RoleUser, nil, nil)

	s.Require().NoError(s.store.UpdateUserVerification(ctx, user.ID, id.StatusVerificationPending))

	found, err := s.store.FindUser(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(id.StatusVerificationPending, found.Verified)

	s.ErrorIs(s.store.UpdateUserVerification(ctx, id.UserID(uuid.New()), id.StatusVerified), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSnapshotMatchesWrites() {
	ctx := context.Background()
	region := s.addRegion("North")
	island := s.addIsland(region.ID, "Harbor")
	user := s.addUser("u1", id.RoleUser, nil, []id.IslandID{island.ID})
	admin := s.addUser("a1", id.RoleAdmin, []id.RegionID{region.ID}, nil)

	snap, err := s.store.Snapshot(ctx)
	s.Require().NoError(err)

	s.Len(snap.Regions, 1)
	s.Len(snap.Islands, 1)
	s.Len(snap.Users, 2)
	s.Equal([]id.IslandID{island.ID}, snap.UserIslands[user.ID])
	s.Equal([]id.RegionID{region.ID}, snap.UserRegions[admin.ID])
}
