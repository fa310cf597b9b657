package domain

// Role is the portal-wide privilege tier of a user.
type Role string

const (
	// RoleUser is a regular contributor, usually the persona of one island.
	RoleUser Role = "USER"
	// RoleAdmin oversees one or more regions.
	RoleAdmin Role = "ADMIN"
	// RoleSuperadmin oversees the whole portal with no scoping membership.
	RoleSuperadmin Role = "SUPERADMIN"
)

// IsValid reports whether the role is one of the three known tiers.
// Callers must treat an invalid role as fatal, never as a default scope.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// VerifiedStatus tracks a user's signup verification progress.
type VerifiedStatus string

const (
	StatusUnverified          VerifiedStatus = "UNVERIFIED"
	StatusVerificationPending VerifiedStatus = "VERIFICATION_PENDING"
	StatusVerified            VerifiedStatus = "VERIFIED"
)

// ContentClass names the kind of content item visibility is computed for.
type ContentClass string

const (
	ClassNotice   ContentClass = "notice"
	ClassInquiry  ContentClass = "inquiry"
	ClassDocument ContentClass = "document"
)

// IsValid reports whether the content class is known.
func (c ContentClass) IsValid() bool {
	switch c {
	case ClassNotice, ClassInquiry, ClassDocument:
		return true
	}
	return false
}

// Actor is the already-authenticated identity performing a request,
// carrying its role and org memberships. The portal never authenticates
// actors itself; an upstream layer supplies these facts.
type Actor struct {
	UserID    UserID
	Role      Role
	Verified  VerifiedStatus
	RegionIDs []RegionID
	IslandIDs []IslandID
}

// IsZero reports whether no actor was attached to the request.
func (a Actor) IsZero() bool {
	return a.UserID.IsNil() && a.Role == ""
}
