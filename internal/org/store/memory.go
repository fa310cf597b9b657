package store

import (
	"context"
	"strings"
	"sync"

	"isleport/internal/org/models"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded org store for tests and local development.
type InMemory struct {
	mu sync.RWMutex

	regions map[id.RegionID]models.Region
	islands map[id.IslandID]models.Island
	users   map[id.UserID]models.User

	userRegions map[id.UserID][]id.RegionID
	userIslands map[id.UserID][]id.IslandID
}

func NewInMemory() *InMemory {
	return &InMemory{
		regions:     make(map[id.RegionID]models.Region),
		islands:     make(map[id.IslandID]models.Island),
		users:       make(map[id.UserID]models.User),
		userRegions: make(map[id.UserID][]id.RegionID),
		userIslands: make(map[id.UserID][]id.IslandID),
	}
}

func (s *InMemory) CreateRegion(_ context.Context, region *models.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[region.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.regions {
		if strings.EqualFold(existing.Name, region.Name) {
			return sentinel.ErrConflict
		}
	}
	s.regions[region.ID] = *region
	return nil
}

func (s *InMemory) FindRegion(_ context.Context, regionID id.RegionID) (*models.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	region, ok := s.regions[regionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &region, nil
}

func (s *InMemory) ListRegions(_ context.Context) ([]*models.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Region, 0, len(s.regions))
	for _, region := range s.regions {
		r := region
		out = append(out, &r)
	}
	return out, nil
}

func (s *InMemory) DeleteRegion(_ context.Context, regionID id.RegionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[regionID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, island := range s.islands {
		if island.RegionID == regionID {
			return sentinel.ErrInvalidState
		}
	}
	delete(s.regions, regionID)
	return nil
}

func (s *InMemory) CreateIsland(_ context.Context, island *models.Island) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[island.RegionID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.islands[island.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.islands {
		if existing.RegionID == island.RegionID && strings.EqualFold(existing.Name, island.Name) {
			return sentinel.ErrConflict
		}
	}
	s.islands[island.ID] = *island
	return nil
}

func (s *InMemory) FindIsland(_ context.Context, islandID id.IslandID) (*models.Island, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	island, ok := s.islands[islandID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &island, nil
}

func (s *InMemory) ListIslands(_ context.Context, regionID id.RegionID) ([]*models.Island, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Island
	for _, island := range s.islands {
		if island.RegionID == regionID {
			i := island
			out = append(out, &i)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteIsland(_ context.Context, islandID id.IslandID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.islands[islandID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.islands, islandID)
	for userID, islands := range s.userIslands {
		filtered := islands[:0]
		for _, memberID := range islands {
			if memberID != islandID {
				filtered = append(filtered, memberID)
			}
		}
		s.userIslands[userID] = filtered
	}
	return nil
}

func (s *InMemory) CreateUser(_ context.Context, user *models.User, regionIDs []id.RegionID, islandIDs []id.IslandID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, regionID := range regionIDs {
		if _, ok := s.regions[regionID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, islandID := range islandIDs {
		if _, ok := s.islands[islandID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	s.users[user.ID] = *user
	s.userRegions[user.ID] = append([]id.RegionID(nil), regionIDs...)
	s.userIslands[user.ID] = append([]id.IslandID(nil), islandIDs...)
	return nil
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *InMemory) UpdateUserVerification(_ context.Context, userID id.UserID, status id.VerifiedStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.Verified = status
	s.users[userID] = user
	return nil
}

func (s *InMemory) Snapshot(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *InMemory) snapshotLocked() *models.Snapshot {
	snap := &models.Snapshot{
		Regions:     make(map[id.RegionID]models.Region, len(s.regions)),
		Islands:     make(map[id.IslandID]models.Island, len(s.islands)),
		Users:       make(map[id.UserID]models.User, len(s.users)),
		UserRegions: make(map[id.UserID][]id.RegionID, len(s.userRegions)),
		UserIslands: make(map[id.UserID][]id.IslandID, len(s.userIslands)),
	}
	for regionID, region := range s.regions {
		snap.Regions[regionID] = region
	}
	for islandID, island := range s.islands {
		snap.Islands[islandID] = island
	}
	for userID, user := range s.users {
		snap.Users[userID] = user
	}
	for userID, regions := range s.userRegions {
		snap.UserRegions[userID] = append([]id.RegionID(nil), regions...)
	}
	for userID, islands := range s.userIslands {
		snap.UserIslands[userID] = append([]id.IslandID(nil), islands...)
	}
	return snap
}

// Directory methods delegate to the pure snapshot traversals so the
// in-memory store and the SQL store answer identically.

func (s *InMemory) IslandsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.IslandID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.IslandsInRegions(regionIDs), nil
}

func (s *InMemory) UsersOnIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.UserID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.UsersOnIslands(islandIDs), nil
}

func (s *InMemory) RegionsOfIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.RegionID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.RegionsOfIslands(islandIDs), nil
}

func (s *InMemory) UsersByRole(ctx context.Context, role id.Role) ([]id.UserID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.UsersByRole(role), nil
}

func (s *InMemory) AdminsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.UserID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.AdminsInRegions(regionIDs), nil
}

func (s *InMemory) RegionsOfUser(ctx context.Context, userID id.UserID) ([]id.RegionID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.RegionsOfUser(userID), nil
}

func (s *InMemory) IslandsOfUser(ctx context.Context, userID id.UserID) ([]id.IslandID, error) {
	snap, _ := s.Snapshot(ctx)
	return snap.IslandsOfUser(userID), nil
}
