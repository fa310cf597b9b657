package store

import (
	"context"

	"isleport/internal/content/models"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
)

// Store persists content items. List operations receive an already
// resolved author scope; callers short-circuit empty scopes and never
// hand one down, so implementations may treat an empty explicit set as
// a programming error and simply return nothing.
type Store interface {
	CreateNotice(ctx context.Context, notice *models.Notice) error
	FindNotice(ctx context.Context, noticeID id.NoticeID) (*models.Notice, error)
	ListNotices(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Notice, int, error)

	CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error
	FindInquiry(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error)
	ListInquiries(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Inquiry, int, error)

	CreateDocument(ctx context.Context, document *models.Document) error
	FindDocument(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	// UpdateDocument persists status, reason and workflow date stamps.
	UpdateDocument(ctx context.Context, document *models.Document) error
	ListDocuments(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Document, int, error)
}
