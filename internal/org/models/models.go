package models

import (
	"strings"
	"time"

	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Region is a top-level geographic grouping of islands.
//
// Invariants:
//   - Name is non-empty, unique case-insensitively, at most 128 characters
//   - A region is deletable only while it owns zero islands
type Region struct {
	ID        id.RegionID `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewRegion validates and constructs a region.
func NewRegion(regionID id.RegionID, name string, now time.Time) (*Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "region name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "region name must be 128 characters or less")
	}
	return &Region{ID: regionID, Name: name, CreatedAt: now}, nil
}

// Island is a sub-unit of exactly one region; the primary tenant a
// regular USER represents.
type Island struct {
	ID        id.IslandID `json:"id"`
	RegionID  id.RegionID `json:"region_id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewIsland validates and constructs an island bound to its region.
func NewIsland(islandID id.IslandID, regionID id.RegionID, name string, now time.Time) (*Island, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "island name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "island name must be 128 characters or less")
	}
	if regionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "island must belong to a region")
	}
	return &Island{ID: islandID, RegionID: regionID, Name: name, CreatedAt: now}, nil
}

// User is a portal user. Memberships (User–Region, User–Island) are join
// facts created at signup and mutated only by administrative deletion;
// they live in the store, not on the struct.
type User struct {
	ID        id.UserID         `json:"id"`
	Name      string            `json:"name"`
	Role      id.Role           `json:"role"`
	Verified  id.VerifiedStatus `json:"verified_status"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewUser validates and constructs a user in the UNVERIFIED state.
func NewUser(userID id.UserID, name string, role id.Role, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidActor, "unknown role "+string(role))
	}
	return &User{ID: userID, Name: name, Role: role, Verified: id.StatusUnverified, CreatedAt: now}, nil
}

// CanRequestVerification checks the UNVERIFIED → VERIFICATION_PENDING move.
func (u *User) CanRequestVerification() error {
	if u.Verified != id.StatusUnverified {
		return dErrors.New(dErrors.CodeInvariantViolation, "verification already requested or granted")
	}
	return nil
}

// ApplyVerificationRequest transitions the user to VERIFICATION_PENDING.
// Call CanRequestVerification first to validate the transition.
func (u *User) ApplyVerificationRequest() {
	u.Verified = id.StatusVerificationPending
}

// CanVerify checks the VERIFICATION_PENDING → VERIFIED move.
func (u *User) CanVerify() error {
	if u.Verified != id.StatusVerificationPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "user has no pending verification")
	}
	return nil
}

// ApplyVerification transitions the user to VERIFIED.
// Call CanVerify first to validate the transition.
func (u *User) ApplyVerification() {
	u.Verified = id.StatusVerified
}
