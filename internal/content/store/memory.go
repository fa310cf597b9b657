package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"isleport/internal/content/models"
	"isleport/internal/org"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded content store for tests and local
// development. Document region/island filters resolve memberships
// through the org directory, mirroring the SQL joins.
type InMemory struct {
	mu        sync.RWMutex
	directory org.Directory

	notices   map[id.NoticeID]models.Notice
	inquiries map[id.InquiryID]models.Inquiry
	documents map[id.DocumentID]models.Document
}

func NewInMemory(directory org.Directory) *InMemory {
	return &InMemory{
		directory: directory,
		notices:   make(map[id.NoticeID]models.Notice),
		inquiries: make(map[id.InquiryID]models.Inquiry),
		documents: make(map[id.DocumentID]models.Document),
	}
}

func (s *InMemory) CreateNotice(_ context.Context, notice *models.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notices[notice.ID]; ok {
		return sentinel.ErrConflict
	}
	s.notices[notice.ID] = *notice
	return nil
}

func (s *InMemory) FindNotice(_ context.Context, noticeID id.NoticeID) (*models.Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notice, ok := s.notices[noticeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &notice, nil
}

func (s *InMemory) ListNotices(_ context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Notice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Notice
	for _, notice := range s.notices {
		if !scope.Contains(notice.AuthorID) {
			continue
		}
		if !matchText(filters.Search, notice.Title, notice.Body) {
			continue
		}
		if !matchCreated(filters, notice.CreatedAt) {
			continue
		}
		n := notice
		matched = append(matched, &n)
	}

	sort.Slice(matched, func(i, j int) bool {
		if page.Sort == models.SortOldestFirst {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, page), total, nil
}

func (s *InMemory) CreateInquiry(_ context.Context, inquiry *models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inquiries[inquiry.ID]; ok {
		return sentinel.ErrConflict
	}
	s.inquiries[inquiry.ID] = *inquiry
	return nil
}

func (s *InMemory) FindInquiry(_ context.Context, inquiryID id.InquiryID) (*models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inquiry, ok := s.inquiries[inquiryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &inquiry, nil
}

func (s *InMemory) ListInquiries(_ context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Inquiry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Inquiry
	for _, inquiry := range s.inquiries {
		if !scope.Contains(inquiry.AuthorID) {
			continue
		}
		if !matchText(filters.Search, inquiry.Title, inquiry.Body) {
			continue
		}
		if !matchCreated(filters, inquiry.CreatedAt) {
			continue
		}
		i := inquiry
		matched = append(matched, &i)
	}

	sort.Slice(matched, func(i, j int) bool {
		if page.Sort == models.SortOldestFirst {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, page), total, nil
}

func (s *InMemory) CreateDocument(_ context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[document.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[document.ID] = *document
	return nil
}

func (s *InMemory) FindDocument(_ context.Context, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	document, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &document, nil
}

func (s *InMemory) UpdateDocument(_ context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[document.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[document.ID] = *document
	return nil
}

func (s *InMemory) ListDocuments(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Document, int, error) {
	ownerSet, err := s.ownerFilter(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Document
	for _, document := range s.documents {
		if !scope.Contains(document.OwnerID) {
			continue
		}
		if ownerSet != nil {
			if _, ok := ownerSet[document.OwnerID]; !ok {
				continue
			}
		}
		if filters.Status != "" && document.Status != filters.Status {
			continue
		}
		if !matchText(filters.Search, document.Name, "") {
			continue
		}
		if !matchCreated(filters, document.CreatedAt) {
			continue
		}
		d := document
		matched = append(matched, &d)
	}

	sort.Slice(matched, func(i, j int) bool {
		if page.Sort == models.SortOldestFirst {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, page), total, nil
}

// ownerFilter resolves region/island document filters to an owner ID
// set, or nil when no such filter applies.
func (s *InMemory) ownerFilter(ctx context.Context, filters models.Filters) (map[id.UserID]struct{}, error) {
	var islandIDs []id.IslandID
	switch {
	case !filters.IslandID.IsNil():
		islandIDs = []id.IslandID{filters.IslandID}
	case !filters.RegionID.IsNil():
		var err error
		islandIDs, err = s.directory.IslandsInRegions(ctx, []id.RegionID{filters.RegionID})
		if err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	owners, err := s.directory.UsersOnIslands(ctx, islandIDs)
	if err != nil {
		return nil, err
	}
	set := make(map[id.UserID]struct{}, len(owners))
	for _, owner := range owners {
		set[owner] = struct{}{}
	}
	return set, nil
}

func matchText(search string, title, body string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(title), search) ||
		strings.Contains(strings.ToLower(body), search)
}

func matchCreated(filters models.Filters, createdAt time.Time) bool {
	if filters.CreatedFrom != nil && createdAt.Before(*filters.CreatedFrom) {
		return false
	}
	if filters.CreatedTo != nil && createdAt.After(*filters.CreatedTo) {
		return false
	}
	return true
}

func paginate[T any](items []*T, page models.Page) []*T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
