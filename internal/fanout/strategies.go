package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"isleport/internal/fanout/events"
	"isleport/internal/org"
	id "isleport/pkg/domain"
)

// strategy computes the raw recipient set for one (event kind, actor
// role) pair. The engine dedupes and removes the actor afterwards.
type strategy func(ctx context.Context, directory org.Directory, event events.Event) ([]id.UserID, error)

type strategyKey struct {
	kind events.Kind
	role id.Role
}

// strategies is the recipient dispatch table. Adding a role or event
// kind is a row here, not a new branch at the call sites.
var strategies = map[strategyKey]strategy{
	{events.KindNoticeCreated, id.RoleSuperadmin}:         noticeBySuperadmin,
	{events.KindNoticeCreated, id.RoleAdmin}:              noticeByAdmin,
	{events.KindInquiryCreated, id.RoleUser}:              inquiryByUser,
	{events.KindDocumentEdited, id.RoleUser}:              documentResubmitted,
	{events.KindUserSignedUp, id.RoleUser}:                userSignedUp,
	{events.KindUserSignedUp, id.RoleAdmin}:               userSignedUp,
	{events.KindDocumentStatusChanged, id.RoleAdmin}:      documentStatusChanged,
	{events.KindDocumentStatusChanged, id.RoleSuperadmin}: documentStatusChanged,
}

// noticeBySuperadmin broadcasts to every user of every role.
func noticeBySuperadmin(ctx context.Context, directory org.Directory, _ events.Event) ([]id.UserID, error) {
	var users, admins, superadmins []id.UserID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = directory.UsersByRole(gctx, id.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		admins, err = directory.UsersByRole(gctx, id.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		superadmins, err = directory.UsersByRole(gctx, id.RoleSuperadmin)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return concat(users, admins, superadmins), nil
}

// noticeByAdmin reaches every USER and ADMIN sharing the creating
// admin's regions, plus all superadmins.
func noticeByAdmin(ctx context.Context, directory org.Directory, event events.Event) ([]id.UserID, error) {
	var regionUsers, regionAdmins, superadmins []id.UserID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		islands, err := directory.IslandsInRegions(gctx, event.Actor.RegionIDs)
		if err != nil {
			return err
		}
		regionUsers, err = directory.UsersOnIslands(gctx, islands)
		return err
	})
	g.Go(func() (err error) {
		regionAdmins, err = directory.AdminsInRegions(gctx, event.Actor.RegionIDs)
		return err
	})
	g.Go(func() (err error) {
		superadmins, err = directory.UsersByRole(gctx, id.RoleSuperadmin)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return concat(regionUsers, regionAdmins, superadmins), nil
}

// inquiryByUser reaches the admins overseeing the user's islands'
// regions, plus all superadmins.
func inquiryByUser(ctx context.Context, directory org.Directory, event events.Event) ([]id.UserID, error) {
	regions, err := directory.RegionsOfIslands(ctx, event.Actor.IslandIDs)
	if err != nil {
		return nil, err
	}
	admins, err := directory.AdminsInRegions(ctx, regions)
	if err != nil {
		return nil, err
	}
	superadmins, err := directory.UsersByRole(ctx, id.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	return concat(admins, superadmins), nil
}

// documentResubmitted reaches every superadmin plus the admins of the
// owner's region memberships. The owner's region is read from its
// region membership rows, not derived through its islands; this mirrors
// how document oversight was assigned upstream.
func documentResubmitted(ctx context.Context, directory org.Directory, event events.Event) ([]id.UserID, error) {
	regions, err := directory.RegionsOfUser(ctx, event.OwnerID)
	if err != nil {
		return nil, err
	}
	admins, err := directory.AdminsInRegions(ctx, regions)
	if err != nil {
		return nil, err
	}
	superadmins, err := directory.UsersByRole(ctx, id.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	return concat(admins, superadmins), nil
}

// userSignedUp reaches every superadmin plus the admins already scoped
// to the new user's declared regions (declared directly, or through its
// declared islands).
func userSignedUp(ctx context.Context, directory org.Directory, event events.Event) ([]id.UserID, error) {
	regions := append([]id.RegionID(nil), event.Actor.RegionIDs...)
	if len(event.Actor.IslandIDs) > 0 {
		islandRegions, err := directory.RegionsOfIslands(ctx, event.Actor.IslandIDs)
		if err != nil {
			return nil, err
		}
		regions = append(regions, islandRegions...)
	}

	admins, err := directory.AdminsInRegions(ctx, regions)
	if err != nil {
		return nil, err
	}
	superadmins, err := directory.UsersByRole(ctx, id.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	return concat(admins, superadmins), nil
}

// documentStatusChanged is owner-addressed: exactly one recipient.
func documentStatusChanged(_ context.Context, _ org.Directory, event events.Event) ([]id.UserID, error) {
	return []id.UserID{event.OwnerID}, nil
}

func concat(sets ...[]id.UserID) []id.UserID {
	var out []id.UserID
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
