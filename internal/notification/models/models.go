// Package models defines persisted notifications. Notifications are
// created only by the fan-out engine and mutated only by read-state
// toggles.
package models

import (
	"strings"
	"time"

	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Notification is one delivery addressed to one user. It references at
// most one content item.
type Notification struct {
	ID     id.NotificationID `json:"id"`
	UserID id.UserID         `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	IsRead bool              `json:"is_read"`

	NoticeID   *id.NoticeID   `json:"notice_id,omitempty"`
	InquiryID  *id.InquiryID  `json:"inquiry_id,omitempty"`
	DocumentID *id.DocumentID `json:"document_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New validates and constructs a notification.
func New(notificationID id.NotificationID, userID id.UserID, title, body string, now time.Time) (*Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification title cannot be empty")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification must target a user")
	}
	return &Notification{
		ID:        notificationID,
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
	}, nil
}

// SetReference attaches the back-reference to the triggering content
// item. A notification references at most one item.
func (n *Notification) SetReference(class id.ContentClass, contentID string) error {
	if n.NoticeID != nil || n.InquiryID != nil || n.DocumentID != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "notification already references a content item")
	}
	switch class {
	case id.ClassNotice:
		noticeID, err := id.ParseNoticeID(contentID)
		if err != nil {
			return err
		}
		n.NoticeID = &noticeID
	case id.ClassInquiry:
		inquiryID, err := id.ParseInquiryID(contentID)
		if err != nil {
			return err
		}
		n.InquiryID = &inquiryID
	case id.ClassDocument:
		documentID, err := id.ParseDocumentID(contentID)
		if err != nil {
			return err
		}
		n.DocumentID = &documentID
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown content class %q", class)
	}
	return nil
}
