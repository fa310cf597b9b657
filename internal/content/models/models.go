// Package models defines the portal's content items: notices, inquiries
// and workflow-bearing documents. Visibility is never stored on an item;
// it is resolved from the author's org position at query time.
package models

import (
	"strings"
	"time"

	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Notice is an announcement authored by an ADMIN or SUPERADMIN.
type Notice struct {
	ID        id.NoticeID `json:"id"`
	AuthorID  id.UserID   `json:"author_id"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewNotice(noticeID id.NoticeID, authorID id.UserID, title, body string, now time.Time) (*Notice, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "notice title cannot be empty")
	}
	return &Notice{ID: noticeID, AuthorID: authorID, Title: title, Body: body, CreatedAt: now}, nil
}

// Inquiry is a question raised by a USER toward its regional admins.
type Inquiry struct {
	ID        id.InquiryID `json:"id"`
	AuthorID  id.UserID    `json:"author_id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewInquiry(inquiryID id.InquiryID, authorID id.UserID, title, body string, now time.Time) (*Inquiry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "inquiry title cannot be empty")
	}
	return &Inquiry{ID: inquiryID, AuthorID: authorID, Title: title, Body: body, CreatedAt: now}, nil
}

// DocumentStatus is a document's position in the review workflow.
type DocumentStatus string

const (
	StatusSubmitted     DocumentStatus = "SUBMITTED"
	StatusEditRequested DocumentStatus = "EDIT_REQUESTED"
	StatusEditCompleted DocumentStatus = "EDIT_COMPLETED"
	StatusUnderReview   DocumentStatus = "UNDER_REVIEW"
	StatusApproved      DocumentStatus = "APPROVED"
)

// IsValid reports whether the status is a known workflow state.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusEditRequested, StatusEditCompleted, StatusUnderReview, StatusApproved:
		return true
	}
	return false
}

// Document is a versioned report owned by a USER, moving through the
// review workflow. Ownership is direct via OwnerID.
type Document struct {
	ID      id.DocumentID  `json:"id"`
	OwnerID id.UserID      `json:"owner_id"`
	Name    string         `json:"name"`
	Status  DocumentStatus `json:"status"`

	EditRequestReason string     `json:"edit_request_reason,omitempty"`
	EditCompletedAt   *time.Time `json:"edit_completed_at,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewDocument constructs a document in the initial SUBMITTED state.
func NewDocument(documentID id.DocumentID, ownerID id.UserID, name string, now time.Time) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document name cannot be empty")
	}
	return &Document{
		ID:        documentID,
		OwnerID:   ownerID,
		Name:      name,
		Status:    StatusSubmitted,
		CreatedAt: now,
	}, nil
}

// SortOrder orders list results by creation time.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest"
	SortOldestFirst SortOrder = "oldest"
)

// Filters narrows a content listing after the author scope has been
// applied. Zero values mean "no constraint". Status, RegionID and
// IslandID apply to documents only.
type Filters struct {
	Search      string
	Status      DocumentStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	RegionID    id.RegionID
	IslandID    id.IslandID
}

// Page is a one-based page request.
type Page struct {
	Number int
	Size   int
	Sort   SortOrder
}

// Normalize clamps the page request into serviceable bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if p.Sort != SortOldestFirst {
		p.Sort = SortNewestFirst
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
