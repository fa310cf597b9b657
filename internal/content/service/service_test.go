package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	contentmodels "isleport/internal/content/models"
	contentstore "isleport/internal/content/store"
	"isleport/internal/fanout/events"
	orgmodels "isleport/internal/org/models"
	orgstore "isleport/internal/org/store"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

type recordingNotifier struct {
	events []events.Event
	err    error
}

func (n *recordingNotifier) FanOut(_ context.Context, event events.Event) error {
	n.events = append(n.events, event)
	return n.err
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	org      *orgstore.InMemory
	notifier *recordingNotifier
	svc      *Service

	region id.RegionID
	island id.IslandID
	user   id.Actor
	admin  id.Actor
	super  id.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.org = orgstore.NewInMemory()
	s.notifier = &recordingNotifier{}

	store := contentstore.NewInMemory(s.org)
	s.svc = New(store, visibility.NewResolver(s.org), slog.New(slog.DiscardHandler),
		WithNotifier(s.notifier))

	region, err := orgmodels.NewRegion(id.RegionID(uuid.New()), "Region", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateRegion(s.ctx, region))
	s.region = region.ID

	island, err := orgmodels.NewIsland(id.IslandID(uuid.New()), region.ID, "Island", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateIsland(s.ctx, island))
	s.island = island.ID

	s.user = s.addActor("user", id.RoleUser, nil, []id.IslandID{island.ID})
	s.admin = s.addActor("admin", id.RoleAdmin, []id.RegionID{region.ID}, nil)
	s.super = s.addActor("super", id.RoleSuperadmin, nil, nil)
}

func (s *ServiceSuite) addActor(name string, role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) id.Actor {
	user, err := orgmodels.NewUser(id.UserID(uuid.New()), name, role, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateUser(s.ctx, user, regionIDs, islandIDs))
	return id.Actor{UserID: user.ID, Role: role, RegionIDs: regionIDs, IslandIDs: islandIDs}
}

func (s *ServiceSuite) submitDocument(name string) *contentmodels.Document {
	doc, err := s.svc.CreateDocument(s.ctx, s.user, name)
	s.Require().NoError(err)
	return doc
}

func (s *ServiceSuite) TestCreateNoticeRoles() {
	_, err := s.svc.CreateNotice(s.ctx, s.user, "t", "b")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	notice, err := s.svc.CreateNotice(s.ctx, s.admin, "Monthly schedule", "details")
	s.Require().NoError(err)
	s.Equal(s.admin.UserID, notice.AuthorID)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(events.KindNoticeCreated, s.notifier.events[0].Kind)
	s.Equal(uuid.UUID(notice.ID), s.notifier.events[0].ContentID)
}

func (s *ServiceSuite) TestCreateInquiryRoles() {
	_, err := s.svc.CreateInquiry(s.ctx, s.admin, "t", "b")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	inquiry, err := s.svc.CreateInquiry(s.ctx, s.user, "Ferry budget", "question")
	s.Require().NoError(err)
	s.Equal(s.user.UserID, inquiry.AuthorID)
	s.Require().Len(s.notifier.events, 1)
	s.Equal(events.KindInquiryCreated, s.notifier.events[0].Kind)
}

func (s *ServiceSuite) TestDocumentCreationIsSilent() {
	doc := s.submitDocument("5월 보고서 V1")
	s.Equal(contentmodels.StatusSubmitted, doc.Status)
	s.Empty(s.notifier.events)
}

func (s *ServiceSuite) TestEditRequestNeedsReason() {
	doc := s.submitDocument("5월 보고서 V1")

	_, err := s.svc.ChangeDocumentStatus(s.ctx, s.admin, doc.ID, contentmodels.StatusEditRequested, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.notifier.events)

	updated, err := s.svc.ChangeDocumentStatus(s.ctx, s.admin, doc.ID, contentmodels.StatusEditRequested, "missing appendix")
	s.Require().NoError(err)
	s.Equal(contentmodels.StatusEditRequested, updated.Status)

	// Exactly one notification event, addressed to the owner.
	s.Require().Len(s.notifier.events, 1)
	event := s.notifier.events[0]
	s.Equal(events.KindDocumentStatusChanged, event.Kind)
	s.Equal(doc.OwnerID, event.OwnerID)
	s.Equal("missing appendix", event.Body)
}

func (s *ServiceSuite) TestResubmissionFansOutDocumentEdited() {
	doc := s.submitDocument("5월 보고서 V1")
	_, err := s.svc.ChangeDocumentStatus(s.ctx, s.admin, doc.ID, contentmodels.StatusEditRequested, "rework")
	s.Require().NoError(err)
	s.notifier.events = nil

	updated, err := s.svc.ChangeDocumentStatus(s.ctx, s.user, doc.ID, contentmodels.StatusEditCompleted, "")
	s.Require().NoError(err)
	s.Require().NotNil(updated.EditCompletedAt)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(events.KindDocumentEdited, s.notifier.events[0].Kind)
	s.Equal(doc.OwnerID, s.notifier.events[0].OwnerID)
}

func (s *ServiceSuite) TestApprovalFlow() {
	doc := s.submitDocument("5월 보고서 V1")

	_, err := s.svc.ChangeDocumentStatus(s.ctx, s.super, doc.ID, contentmodels.StatusUnderReview, "")
	s.Require().NoError(err)
	s.Empty(s.notifier.events, "review start is silent")

	updated, err := s.svc.ChangeDocumentStatus(s.ctx, s.super, doc.ID, contentmodels.StatusApproved, "")
	s.Require().NoError(err)
	s.Require().NotNil(updated.ApprovedAt)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(events.KindDocumentStatusChanged, s.notifier.events[0].Kind)
	s.Equal("APPROVED", s.notifier.events[0].Status)
}

func (s *ServiceSuite) TestPartialFanoutAfterCommittedTransition() {
	doc := s.submitDocument("5월 보고서 V1")
	s.notifier.err = errors.New("kafka down")

	updated, err := s.svc.ChangeDocumentStatus(s.ctx, s.admin, doc.ID, contentmodels.StatusEditRequested, "rework")
	s.True(dErrors.HasCode(err, dErrors.CodePartialFanout))

	// The transition stands even though fan-out failed.
	s.Require().NotNil(updated)
	s.Equal(contentmodels.StatusEditRequested, updated.Status)

	found, getErr := s.svc.GetDocument(s.ctx, s.admin, doc.ID)
	s.Require().NoError(getErr)
	s.Equal(contentmodels.StatusEditRequested, found.Status)
}

func (s *ServiceSuite) TestScopedActorsCannotTouchForeignDocuments() {
	doc := s.submitDocument("5월 보고서 V1")

	s.Run("foreign user", func() {
		stranger := s.addActor("stranger", id.RoleUser, nil, nil)
		_, err := s.svc.ChangeDocumentStatus(s.ctx, stranger, doc.ID, contentmodels.StatusEditCompleted, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("admin outside the owner's region", func() {
		outsideAdmin := s.addActor("outside-admin", id.RoleAdmin, nil, nil)
		_, err := s.svc.ChangeDocumentStatus(s.ctx, outsideAdmin, doc.ID, contentmodels.StatusEditRequested, "rework")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreateDocumentVersion() {
	doc := s.submitDocument("5월 보고서 V3")

	s.Run("owner increments the version token", func() {
		next, err := s.svc.CreateDocumentVersion(s.ctx, s.user, doc.ID)
		s.Require().NoError(err)
		s.Equal("5월 보고서 V4", next.Name)
		s.Equal(contentmodels.StatusSubmitted, next.Status)
	})

	s.Run("unparsable name falls back to V1", func() {
		plain := s.submitDocument("보고서")
		next, err := s.svc.CreateDocumentVersion(s.ctx, s.user, plain.ID)
		s.Require().NoError(err)
		s.Equal("보고서 V1", next.Name)
	})

	s.Run("non-owner rejected", func() {
		_, err := s.svc.CreateDocumentVersion(s.ctx, s.admin, doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
