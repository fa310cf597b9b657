// Package events defines the domain events that drive notification
// fan-out. It deliberately depends only on pkg/domain so that producers
// (org, content) and the fan-out engine can share it without cycles.
package events

import (
	"time"

	"github.com/google/uuid"

	id "isleport/pkg/domain"
)

// Kind names a fan-out-worthy occurrence.
type Kind string

const (
	KindNoticeCreated         Kind = "NOTICE_CREATED"
	KindInquiryCreated        Kind = "INQUIRY_CREATED"
	KindDocumentEdited        Kind = "DOCUMENT_EDITED"
	KindDocumentStatusChanged Kind = "DOCUMENT_STATUS_CHANGED"
	KindUserSignedUp          Kind = "USER_SIGNED_UP"
)

// Event is a fan-out trigger. Actor is the user whose action produced
// the event; recipients never include the actor.
type Event struct {
	Kind         Kind
	Actor        id.Actor
	ContentClass id.ContentClass
	ContentID    uuid.UUID
	Title        string
	Body         string

	// Status carries the new document status for KindDocumentStatusChanged.
	Status string
	// OwnerID is the document owner for owner-addressed events.
	OwnerID id.UserID

	OccurredAt time.Time
}
