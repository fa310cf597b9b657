// Package domain holds identifier and enum types shared across modules.
//
// IDs are distinct named UUID types so the compiler rejects cross-type
// assignment (a RegionID can never be passed where a UserID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "isleport/pkg/domain-errors"
)

type (
	// UserID identifies a portal user (USER, ADMIN or SUPERADMIN).
	UserID uuid.UUID
	// RegionID identifies a top-level geographic region.
	RegionID uuid.UUID
	// IslandID identifies an island within a region.
	IslandID uuid.UUID
	// NoticeID identifies a notice.
	NoticeID uuid.UUID
	// InquiryID identifies an inquiry.
	InquiryID uuid.UUID
	// DocumentID identifies a document.
	DocumentID uuid.UUID
	// NotificationID identifies a notification row.
	NotificationID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id RegionID) String() string       { return uuid.UUID(id).String() }
func (id IslandID) String() string       { return uuid.UUID(id).String() }
func (id NoticeID) String() string       { return uuid.UUID(id).String() }
func (id InquiryID) String() string      { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

// MarshalText renders IDs as canonical UUID strings in JSON and logs.
func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id RegionID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id IslandID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id NoticeID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id InquiryID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(raw []byte) error {
	parsed, err := ParseUserID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RegionID) UnmarshalText(raw []byte) error {
	parsed, err := ParseRegionID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *IslandID) UnmarshalText(raw []byte) error {
	parsed, err := ParseIslandID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *NoticeID) UnmarshalText(raw []byte) error {
	parsed, err := ParseNoticeID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *InquiryID) UnmarshalText(raw []byte) error {
	parsed, err := ParseInquiryID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DocumentID) UnmarshalText(raw []byte) error {
	parsed, err := ParseDocumentID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *NotificationID) UnmarshalText(raw []byte) error {
	parsed, err := ParseNotificationID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RegionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id IslandID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id NoticeID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id InquiryID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the parsing invariant at trust boundaries:
// IDs must be valid, non-empty, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

// ParseRegionID parses and validates a region ID from its string form.
func ParseRegionID(raw string) (RegionID, error) {
	parsed, err := parseUUID(raw, "region")
	return RegionID(parsed), err
}

// ParseIslandID parses and validates an island ID from its string form.
func ParseIslandID(raw string) (IslandID, error) {
	parsed, err := parseUUID(raw, "island")
	return IslandID(parsed), err
}

// ParseNoticeID parses and validates a notice ID from its string form.
func ParseNoticeID(raw string) (NoticeID, error) {
	parsed, err := parseUUID(raw, "notice")
	return NoticeID(parsed), err
}

// ParseInquiryID parses and validates an inquiry ID from its string form.
func ParseInquiryID(raw string) (InquiryID, error) {
	parsed, err := parseUUID(raw, "inquiry")
	return InquiryID(parsed), err
}

// ParseDocumentID parses and validates a document ID from its string form.
func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw, "document")
	return DocumentID(parsed), err
}

// ParseNotificationID parses and validates a notification ID from its string form.
func ParseNotificationID(raw string) (NotificationID, error) {
	parsed, err := parseUUID(raw, "notification")
	return NotificationID(parsed), err
}
