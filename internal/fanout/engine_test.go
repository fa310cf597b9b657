package fanout

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"isleport/internal/fanout/events"
	notifmodels "isleport/internal/notification/models"
	notifstore "isleport/internal/notification/store"
	"isleport/internal/org/mocks"
	orgmodels "isleport/internal/org/models"
	orgstore "isleport/internal/org/store"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

type failingInserter struct{ err error }

func (f *failingInserter) BulkInsert(context.Context, []*notifmodels.Notification) error {
	return f.err
}

// EngineSuite runs the engine against a real in-memory org graph:
//
//	Region R1: islands I1, I2 — users u1 (I1), u2 (I2); admins a1, a2
//	Region R2: island I3      — user u3;                admin b1
//	Superadmins s1, s2
type EngineSuite struct {
	suite.Suite
	ctx     context.Context
	org     *orgstore.InMemory
	notifs  *notifstore.InMemory
	engine  *Engine
	regionA id.RegionID
	regionB id.RegionID
	islandA id.IslandID
	u1, u2  id.UserID
	u3      id.UserID
	a1, a2  id.UserID
	b1      id.UserID
	s1, s2  id.UserID
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.org = orgstore.NewInMemory()
	s.notifs = notifstore.NewInMemory()
	s.engine = NewEngine(s.org, s.notifs, slog.New(slog.DiscardHandler))

	s.regionA = s.addRegion("R1")
	s.regionB = s.addRegion("R2")
	s.islandA = s.addIsland(s.regionA, "I1")
	islandA2 := s.addIsland(s.regionA, "I2")
	islandB := s.addIsland(s.regionB, "I3")

	s.u1 = s.addUser("u1", id.RoleUser, nil, []id.IslandID{s.islandA})
	s.u2 = s.addUser("u2", id.RoleUser, nil, []id.IslandID{islandA2})
	s.u3 = s.addUser("u3", id.RoleUser, nil, []id.IslandID{islandB})
	s.a1 = s.addUser("a1", id.RoleAdmin, []id.RegionID{s.regionA}, nil)
	s.a2 = s.addUser("a2", id.RoleAdmin, []id.RegionID{s.regionA}, nil)
	s.b1 = s.addUser("b1", id.RoleAdmin, []id.RegionID{s.regionB}, nil)
	s.s1 = s.addUser("s1", id.RoleSuperadmin, nil, nil)
	s.s2 = s.addUser("s2", id.RoleSuperadmin, nil, nil)
}

func (s *EngineSuite) addRegion(name string) id.RegionID {
	region, err := orgmodels.NewRegion(id.RegionID(uuid.New()), name, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateRegion(s.ctx, region))
	return region.ID
}

func (s *EngineSuite) addIsland(regionID id.RegionID, name string) id.IslandID {
	island, err := orgmodels.NewIsland(id.IslandID(uuid.New()), regionID, name, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateIsland(s.ctx, island))
	return island.ID
}

func (s *EngineSuite) addUser(name string, role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) id.UserID {
	user, err := orgmodels.NewUser(id.UserID(uuid.New()), name, role, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateUser(s.ctx, user, regionIDs, islandIDs))
	return user.ID
}

func (s *EngineSuite) recipients() []id.UserID {
	var out []id.UserID
	for _, userID := range []id.UserID{s.u1, s.u2, s.u3, s.a1, s.a2, s.b1, s.s1, s.s2} {
		count, err := s.notifs.CountUnread(s.ctx, userID)
		s.Require().NoError(err)
		if count > 0 {
			out = append(out, userID)
		}
	}
	return out
}

func (s *EngineSuite) TestNoticeByAdminReachesRegion() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:         events.KindNoticeCreated,
		Actor:        id.Actor{UserID: s.a1, Role: id.RoleAdmin, RegionIDs: []id.RegionID{s.regionA}},
		ContentClass: id.ClassNotice,
		ContentID:    uuid.New(),
		Title:        "Monthly schedule",
	})
	s.Require().NoError(err)

	// All users on R1's islands, the other R1 admin, both superadmins;
	// never the acting admin.
	s.ElementsMatch([]id.UserID{s.u1, s.u2, s.a2, s.s1, s.s2}, s.recipients())
}

func (s *EngineSuite) TestNoticeBySuperadminExcludesActor() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:         events.KindNoticeCreated,
		Actor:        id.Actor{UserID: s.s1, Role: id.RoleSuperadmin},
		ContentClass: id.ClassNotice,
		ContentID:    uuid.New(),
		Title:        "Portal downtime",
	})
	s.Require().NoError(err)

	recipients := s.recipients()
	s.NotContains(recipients, s.s1)
	s.ElementsMatch([]id.UserID{s.u1, s.u2, s.u3, s.a1, s.a2, s.b1, s.s2}, recipients)
}

func (s *EngineSuite) TestInquiryReachesIslandAdminsAndSuperadmins() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:         events.KindInquiryCreated,
		Actor:        id.Actor{UserID: s.u1, Role: id.RoleUser, IslandIDs: []id.IslandID{s.islandA}},
		ContentClass: id.ClassInquiry,
		ContentID:    uuid.New(),
		Title:        "Ferry budget",
	})
	s.Require().NoError(err)

	s.ElementsMatch([]id.UserID{s.a1, s.a2, s.s1, s.s2}, s.recipients())
}

func (s *EngineSuite) TestSignupWithoutRegionReachesOnlySuperadmins() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:  events.KindUserSignedUp,
		Actor: id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleUser},
		Title: "newcomer",
	})
	s.Require().NoError(err)

	s.ElementsMatch([]id.UserID{s.s1, s.s2}, s.recipients())
}

func (s *EngineSuite) TestStatusChangeAddressesOwnerOnly() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:         events.KindDocumentStatusChanged,
		Actor:        id.Actor{UserID: s.a1, Role: id.RoleAdmin, RegionIDs: []id.RegionID{s.regionA}},
		ContentClass: id.ClassDocument,
		ContentID:    uuid.New(),
		Title:        "Edit requested: 5월 보고서 V3",
		Body:         "missing appendix",
		OwnerID:      s.u1,
	})
	s.Require().NoError(err)

	s.Equal([]id.UserID{s.u1}, s.recipients())

	rows, _, err := s.notifs.List(s.ctx, s.u1, true, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("Edit requested: 5월 보고서 V3", rows[0].Title)
	s.Require().NotNil(rows[0].DocumentID)
}

func (s *EngineSuite) TestZeroRecipientsIsNoOp() {
	// A lone superadmin actor with no other users in scope.
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:    events.KindDocumentStatusChanged,
		Actor:   id.Actor{UserID: s.s1, Role: id.RoleSuperadmin},
		OwnerID: s.s1,
	})
	s.Require().NoError(err)
	s.Empty(s.recipients())
}

func (s *EngineSuite) TestUnknownRoleIsFatal() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:  events.KindNoticeCreated,
		Actor: id.Actor{UserID: s.u1, Role: id.Role("OWNER")},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidActor))
}

func (s *EngineSuite) TestUnmappedStrategyIsNoOp() {
	err := s.engine.FanOut(s.ctx, events.Event{
		Kind:  events.KindNoticeCreated,
		Actor: id.Actor{UserID: s.u1, Role: id.RoleUser},
	})
	s.Require().NoError(err)
	s.Empty(s.recipients())
}

func TestInsertFailureSurfacesAsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	directory := mocks.NewMockDirectory(ctrl)

	super := id.UserID(uuid.New())
	directory.EXPECT().UsersByRole(gomock.Any(), id.RoleSuperadmin).Return([]id.UserID{super}, nil)
	directory.EXPECT().AdminsInRegions(gomock.Any(), gomock.Any()).Return(nil, nil)

	engine := NewEngine(directory, &failingInserter{err: errors.New("disk full")}, slog.New(slog.DiscardHandler))

	err := engine.FanOut(context.Background(), events.Event{
		Kind:  events.KindUserSignedUp,
		Actor: id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleUser},
	})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

// Document resubmission resolves the owner's region through its region
// membership rows, not through its islands.
func TestResubmissionUsesRegionMembership(t *testing.T) {
	ctrl := gomock.NewController(t)
	directory := mocks.NewMockDirectory(ctrl)

	owner := id.UserID(uuid.New())
	region := id.RegionID(uuid.New())
	admin := id.UserID(uuid.New())
	super := id.UserID(uuid.New())

	directory.EXPECT().RegionsOfUser(gomock.Any(), owner).Return([]id.RegionID{region}, nil)
	directory.EXPECT().AdminsInRegions(gomock.Any(), []id.RegionID{region}).Return([]id.UserID{admin}, nil)
	directory.EXPECT().UsersByRole(gomock.Any(), id.RoleSuperadmin).Return([]id.UserID{super}, nil)

	notifs := notifstore.NewInMemory()
	engine := NewEngine(directory, notifs, slog.New(slog.DiscardHandler))

	err := engine.FanOut(context.Background(), events.Event{
		Kind:         events.KindDocumentEdited,
		Actor:        id.Actor{UserID: owner, Role: id.RoleUser, IslandIDs: []id.IslandID{id.IslandID(uuid.New())}},
		ContentClass: id.ClassDocument,
		ContentID:    uuid.New(),
		Title:        "5월 보고서 V3",
		OwnerID:      owner,
	})
	if err != nil {
		t.Fatalf("fan out: %v", err)
	}

	for _, userID := range []id.UserID{admin, super} {
		count, countErr := notifs.CountUnread(context.Background(), userID)
		if countErr != nil || count != 1 {
			t.Fatalf("expected one notification for %s, got %d (%v)", userID, count, countErr)
		}
	}
}
