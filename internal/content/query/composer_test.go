package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contentmodels "isleport/internal/content/models"
	contentstore "isleport/internal/content/store"
	"isleport/internal/org/models"
	orgstore "isleport/internal/org/store"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
)

// countingStore wraps the content store and counts backing calls.
type countingStore struct {
	contentstore.Store
	calls int
}

func (c *countingStore) ListNotices(ctx context.Context, scope visibility.AuthorScope, filters contentmodels.Filters, page contentmodels.Page) ([]*contentmodels.Notice, int, error) {
	c.calls++
	return c.Store.ListNotices(ctx, scope, filters, page)
}

func (c *countingStore) ListInquiries(ctx context.Context, scope visibility.AuthorScope, filters contentmodels.Filters, page contentmodels.Page) ([]*contentmodels.Inquiry, int, error) {
	c.calls++
	return c.Store.ListInquiries(ctx, scope, filters, page)
}

func (c *countingStore) ListDocuments(ctx context.Context, scope visibility.AuthorScope, filters contentmodels.Filters, page contentmodels.Page) ([]*contentmodels.Document, int, error) {
	c.calls++
	return c.Store.ListDocuments(ctx, scope, filters, page)
}

type fixture struct {
	ctx      context.Context
	org      *orgstore.InMemory
	content  *countingStore
	composer *Composer

	region id.RegionID
	island id.IslandID
	user   id.UserID
	admin  id.UserID
	super  id.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	org := orgstore.NewInMemory()
	content := &countingStore{Store: contentstore.NewInMemory(org)}

	f := &fixture{
		ctx:      ctx,
		org:      org,
		content:  content,
		composer: NewComposer(visibility.NewResolver(org), content),
	}

	region, err := models.NewRegion(id.RegionID(uuid.New()), "Region", time.Now())
	require.NoError(t, err)
	require.NoError(t, org.CreateRegion(ctx, region))
	f.region = region.ID

	island, err := models.NewIsland(id.IslandID(uuid.New()), region.ID, "Island", time.Now())
	require.NoError(t, err)
	require.NoError(t, org.CreateIsland(ctx, island))
	f.island = island.ID

	f.user = f.addUser(t, "user", id.RoleUser, nil, []id.IslandID{island.ID})
	f.admin = f.addUser(t, "admin", id.RoleAdmin, []id.RegionID{region.ID}, nil)
	f.super = f.addUser(t, "super", id.RoleSuperadmin, nil, nil)
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role id.Role, regionIDs []id.RegionID, islandIDs []id.IslandID) id.UserID {
	t.Helper()
	user, err := models.NewUser(id.UserID(uuid.New()), name, role, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.org.CreateUser(f.ctx, user, regionIDs, islandIDs))
	return user.ID
}

func (f *fixture) addDocument(t *testing.T, ownerID id.UserID, name string, createdAt time.Time) *contentmodels.Document {
	t.Helper()
	doc, err := contentmodels.NewDocument(id.DocumentID(uuid.New()), ownerID, name, createdAt)
	require.NoError(t, err)
	require.NoError(t, f.content.CreateDocument(f.ctx, doc))
	return doc
}

func TestEmptyScopeShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, f.user, "5월 보고서 V1", time.Now())

	// An admin with no region memberships resolves to the empty scope.
	actor := id.Actor{UserID: f.admin, Role: id.RoleAdmin}

	result, err := f.composer.ListDocuments(f.ctx, actor, contentmodels.Filters{}, contentmodels.Page{})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
	assert.Zero(t, f.content.calls, "empty scope must not reach the store")
}

func TestAdminListsScopedDocuments(t *testing.T) {
	f := newFixture(t)
	mine := f.addDocument(t, f.user, "5월 보고서 V1", time.Now())

	outsider := f.addUser(t, "outsider", id.RoleUser, nil, nil)
	f.addDocument(t, outsider, "외부 보고서 V1", time.Now())

	actor := id.Actor{UserID: f.admin, Role: id.RoleAdmin, RegionIDs: []id.RegionID{f.region}}

	result, err := f.composer.ListDocuments(f.ctx, actor, contentmodels.Filters{}, contentmodels.Page{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, mine.ID, result.Items[0].ID)
	assert.Equal(t, 1, result.Total)
}

func TestStatusAndPaginationFilters(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.addDocument(t, f.user, "보고서 V1", base.Add(time.Duration(i)*time.Hour))
	}
	approved := f.addDocument(t, f.user, "승인 보고서 V2", base.Add(10*time.Hour))
	approved.Status = contentmodels.StatusApproved
	require.NoError(t, f.content.UpdateDocument(f.ctx, approved))

	actor := id.Actor{UserID: f.super, Role: id.RoleSuperadmin}

	t.Run("status filter", func(t *testing.T) {
		result, err := f.composer.ListDocuments(f.ctx, actor,
			contentmodels.Filters{Status: contentmodels.StatusApproved}, contentmodels.Page{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, approved.ID, result.Items[0].ID)
	})

	t.Run("pagination with newest first", func(t *testing.T) {
		result, err := f.composer.ListDocuments(f.ctx, actor,
			contentmodels.Filters{}, contentmodels.Page{Number: 1, Size: 2})
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		assert.Equal(t, 6, result.Total)
		assert.Equal(t, approved.ID, result.Items[0].ID)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := f.composer.ListDocuments(f.ctx, actor,
			contentmodels.Filters{Status: contentmodels.DocumentStatus("LOST")}, contentmodels.Page{})
		require.Error(t, err)
	})
}

func TestUserSeesOwnAndSuperadminNotices(t *testing.T) {
	f := newFixture(t)

	adminNotice, err := contentmodels.NewNotice(id.NoticeID(uuid.New()), f.admin, "Region notice", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.content.CreateNotice(f.ctx, adminNotice))

	otherAdmin := f.addUser(t, "other-admin", id.RoleAdmin, nil, nil)
	strayNotice, err := contentmodels.NewNotice(id.NoticeID(uuid.New()), otherAdmin, "Stray notice", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.content.CreateNotice(f.ctx, strayNotice))

	actor := id.Actor{UserID: f.user, Role: id.RoleUser, IslandIDs: []id.IslandID{f.island}}

	result, err := f.composer.ListNotices(f.ctx, actor, contentmodels.Filters{}, contentmodels.Page{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, adminNotice.ID, result.Items[0].ID)
}
