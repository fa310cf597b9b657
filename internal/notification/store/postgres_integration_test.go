//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"isleport/internal/notification/models"
	"isleport/internal/notification/store"
	orgmodels "isleport/internal/org/models"
	orgstore "isleport/internal/org/store"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	org      *orgstore.Postgres
	store    *store.Postgres

	alice id.UserID
	bob   id.UserID
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
	s.org = orgstore.NewPostgres(s.postgres.DB)
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"notifications", "documents", "inquiries", "notices",
		"user_islands", "user_regions", "users", "islands", "regions")
	s.Require().NoError(err)

	s.alice = s.addUser("alice")
	s.bob = s.addUser("bob")
}

func (s *PostgresStoreSuite) addUser(name string) id.UserID {
	user, err := orgmodels.NewUser(id.UserID(uuid.New()), name, id.RoleUser, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.org.CreateUser(context.Background(), user, nil, nil))
	return user.ID
}

func (s *PostgresStoreSuite) deliver(userID id.UserID, title string, at time.Time) *models.Notification {
	n, err := models.New(id.NotificationID(uuid.New()), userID, title, "", at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.BulkInsert(context.Background(), []*models.Notification{n}))
	return n
}

func (s *PostgresStoreSuite) TestBulkInsertAndList() {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	batch := make([]*models.Notification, 0, 3)
	for i := 0; i < 3; i++ {
		n, err := models.New(id.NotificationID(uuid.New()), s.alice, "Notice posted", "", base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		batch = append(batch, n)
	}
	s.Require().NoError(s.store.BulkInsert(ctx, batch))

	rows, total, err := s.store.List(ctx, s.alice, false, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(3, total)
	// Newest first.
	s.Equal(batch[2].ID, rows[0].ID)

	rows, total, err = s.store.List(ctx, s.bob, false, 20, 0)
	s.Require().NoError(err)
	s.Empty(rows)
	s.Zero(total)
}

func (s *PostgresStoreSuite) TestBulkInsertEmptyBatchIsNoop() {
	s.NoError(s.store.BulkInsert(context.Background(), nil))
}

func (s *PostgresStoreSuite) TestReferenceSurvivesRoundTrip() {
	ctx := context.Background()

	noticeID := id.NoticeID(uuid.New())
	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO notices (id, author_id, title, body, created_at) VALUES ($1, $2, $3, '', $4)`,
		noticeID.String(), s.bob.String(), "Monthly schedule", time.Now())
	s.Require().NoError(err)

	n, err := models.New(id.NotificationID(uuid.New()), s.alice, "New notice", "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(n.SetReference(id.ClassNotice, noticeID.String()))
	s.Require().NoError(s.store.BulkInsert(ctx, []*models.Notification{n}))

	found, err := s.store.Find(ctx, n.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.NoticeID)
	s.Equal(noticeID, *found.NoticeID)
	s.Nil(found.InquiryID)
	s.Nil(found.DocumentID)
}

func (s *PostgresStoreSuite) TestMarkReadIsScopedToOwner() {
	ctx := context.Background()
	n := s.deliver(s.alice, "New notice", time.Now())

	// Another user cannot flip someone else's notification.
	s.ErrorIs(s.store.MarkRead(ctx, n.ID, s.bob), sentinel.ErrNotFound)

	s.Require().NoError(s.store.MarkRead(ctx, n.ID, s.alice))

	found, err := s.store.Find(ctx, n.ID)
	s.Require().NoError(err)
	s.True(found.IsRead)

	count, err := s.store.CountUnread(ctx, s.alice)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *PostgresStoreSuite) TestMarkAllReadReportsChanged() {
	ctx := context.Background()
	s.deliver(s.alice, "one", time.Now())
	s.deliver(s.alice, "two", time.Now())
	s.deliver(s.bob, "other", time.Now())

	updated, err := s.store.MarkAllRead(ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(2, updated)

	// Idempotent second pass.
	updated, err = s.store.MarkAllRead(ctx, s.alice)
	s.Require().NoError(err)
	s.Zero(updated)

	count, err := s.store.CountUnread(ctx, s.bob)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestUnreadFilter() {
	ctx := context.Background()
	read := s.deliver(s.alice, "old", time.Now().Add(-time.Hour))
	unread := s.deliver(s.alice, "new", time.Now())
	s.Require().NoError(s.store.MarkRead(ctx, read.ID, s.alice))

	rows, total, err := s.store.List(ctx, s.alice, true, 20, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(unread.ID, rows[0].ID)
	s.Equal(1, total)
}
