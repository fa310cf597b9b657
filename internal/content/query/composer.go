// Package query composes scoped content listings: visibility resolution
// first, then filters and pagination against the store.
package query

import (
	"context"

	"isleport/internal/content/models"
	"isleport/internal/content/store"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Result is one page of a scoped listing.
type Result[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Composer applies the actor's author scope before any store access.
// An explicit empty scope returns an empty page without touching the
// store: an empty IN-list must never reach a backend.
type Composer struct {
	resolver *visibility.Resolver
	store    store.Store
}

func NewComposer(resolver *visibility.Resolver, store store.Store) *Composer {
	return &Composer{resolver: resolver, store: store}
}

func (c *Composer) ListNotices(ctx context.Context, actor id.Actor, filters models.Filters, page models.Page) (Result[*models.Notice], error) {
	scope, err := c.resolver.ResolveVisibleAuthors(ctx, actor, id.ClassNotice)
	if err != nil {
		return Result[*models.Notice]{}, err
	}
	if scope.IsEmpty() {
		return Result[*models.Notice]{Items: []*models.Notice{}}, nil
	}

	items, total, err := c.store.ListNotices(ctx, scope, filters, page.Normalize())
	if err != nil {
		return Result[*models.Notice]{}, dErrors.Wrap(err, dErrors.CodeInternal, "list notices")
	}
	return Result[*models.Notice]{Items: orEmpty(items), Total: total}, nil
}

func (c *Composer) ListInquiries(ctx context.Context, actor id.Actor, filters models.Filters, page models.Page) (Result[*models.Inquiry], error) {
	scope, err := c.resolver.ResolveVisibleAuthors(ctx, actor, id.ClassInquiry)
	if err != nil {
		return Result[*models.Inquiry]{}, err
	}
	if scope.IsEmpty() {
		return Result[*models.Inquiry]{Items: []*models.Inquiry{}}, nil
	}

	items, total, err := c.store.ListInquiries(ctx, scope, filters, page.Normalize())
	if err != nil {
		return Result[*models.Inquiry]{}, dErrors.Wrap(err, dErrors.CodeInternal, "list inquiries")
	}
	return Result[*models.Inquiry]{Items: orEmpty(items), Total: total}, nil
}

func (c *Composer) ListDocuments(ctx context.Context, actor id.Actor, filters models.Filters, page models.Page) (Result[*models.Document], error) {
	scope, err := c.resolver.ResolveVisibleAuthors(ctx, actor, id.ClassDocument)
	if err != nil {
		return Result[*models.Document]{}, err
	}
	if scope.IsEmpty() {
		return Result[*models.Document]{Items: []*models.Document{}}, nil
	}

	if filters.Status != "" && !filters.Status.IsValid() {
		return Result[*models.Document]{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown document status %q", filters.Status)
	}

	items, total, err := c.store.ListDocuments(ctx, scope, filters, page.Normalize())
	if err != nil {
		return Result[*models.Document]{}, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	return Result[*models.Document]{Items: orEmpty(items), Total: total}, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
