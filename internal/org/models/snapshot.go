package models

import (
	"sort"

	id "isleport/pkg/domain"
)

// Snapshot is an immutable view of the org graph at a point in time.
// All traversals are pure functions over this view; results are sorted
// by ID so callers downstream (fan-out, scoping) behave deterministically.
type Snapshot struct {
	Regions map[id.RegionID]Region
	Islands map[id.IslandID]Island
	Users   map[id.UserID]User

	UserRegions map[id.UserID][]id.RegionID
	UserIslands map[id.UserID][]id.IslandID
}

// IslandsInRegions returns the islands belonging to any of the given
// regions. First leg of the Region → Islands → Users expansion.
func (s *Snapshot) IslandsInRegions(regionIDs []id.RegionID) []id.IslandID {
	want := make(map[id.RegionID]struct{}, len(regionIDs))
	for _, regionID := range regionIDs {
		want[regionID] = struct{}{}
	}

	var out []id.IslandID
	for islandID, island := range s.Islands {
		if _, ok := want[island.RegionID]; ok {
			out = append(out, islandID)
		}
	}
	sortIslandIDs(out)
	return out
}

// UsersOnIslands returns the users holding a membership on any of the
// given islands. Second leg of the Region → Islands → Users expansion.
func (s *Snapshot) UsersOnIslands(islandIDs []id.IslandID) []id.UserID {
	want := make(map[id.IslandID]struct{}, len(islandIDs))
	for _, islandID := range islandIDs {
		want[islandID] = struct{}{}
	}

	seen := make(map[id.UserID]struct{})
	var out []id.UserID
	for userID, islands := range s.UserIslands {
		for _, islandID := range islands {
			if _, ok := want[islandID]; !ok {
				continue
			}
			if _, dup := seen[userID]; !dup {
				seen[userID] = struct{}{}
				out = append(out, userID)
			}
			break
		}
	}
	sortUserIDs(out)
	return out
}

// RegionsOfIslands returns the distinct regions owning the given islands.
func (s *Snapshot) RegionsOfIslands(islandIDs []id.IslandID) []id.RegionID {
	seen := make(map[id.RegionID]struct{})
	var out []id.RegionID
	for _, islandID := range islandIDs {
		island, ok := s.Islands[islandID]
		if !ok {
			continue
		}
		if _, dup := seen[island.RegionID]; !dup {
			seen[island.RegionID] = struct{}{}
			out = append(out, island.RegionID)
		}
	}
	sortRegionIDs(out)
	return out
}

// UsersByRole returns every user holding the given role.
func (s *Snapshot) UsersByRole(role id.Role) []id.UserID {
	var out []id.UserID
	for userID, user := range s.Users {
		if user.Role == role {
			out = append(out, userID)
		}
	}
	sortUserIDs(out)
	return out
}

// AdminsInRegions returns ADMIN users whose region memberships intersect
// the given regions.
func (s *Snapshot) AdminsInRegions(regionIDs []id.RegionID) []id.UserID {
	want := make(map[id.RegionID]struct{}, len(regionIDs))
	for _, regionID := range regionIDs {
		want[regionID] = struct{}{}
	}

	var out []id.UserID
	for userID, user := range s.Users {
		if user.Role != id.RoleAdmin {
			continue
		}
		for _, regionID := range s.UserRegions[userID] {
			if _, ok := want[regionID]; ok {
				out = append(out, userID)
				break
			}
		}
	}
	sortUserIDs(out)
	return out
}

// RegionsOfUser returns the user's region memberships.
func (s *Snapshot) RegionsOfUser(userID id.UserID) []id.RegionID {
	out := append([]id.RegionID(nil), s.UserRegions[userID]...)
	sortRegionIDs(out)
	return out
}

// IslandsOfUser returns the user's island memberships.
func (s *Snapshot) IslandsOfUser(userID id.UserID) []id.IslandID {
	out := append([]id.IslandID(nil), s.UserIslands[userID]...)
	sortIslandIDs(out)
	return out
}

func sortUserIDs(ids []id.UserID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func sortRegionIDs(ids []id.RegionID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func sortIslandIDs(ids []id.IslandID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
