package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"isleport/internal/notification/models"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/platform/tx"
)

// Postgres stores notifications in PostgreSQL. Fan-out writes arrive as
// one set-based insert so a batch commits or fails as a unit.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) BulkInsert(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	var (
		ids        = make([]string, 0, len(notifications))
		userIDs    = make([]string, 0, len(notifications))
		titles     = make([]string, 0, len(notifications))
		bodies     = make([]string, 0, len(notifications))
		notices    = make([]sql.NullString, 0, len(notifications))
		inquiries  = make([]sql.NullString, 0, len(notifications))
		documents  = make([]sql.NullString, 0, len(notifications))
		createdAts = make([]time.Time, 0, len(notifications))
	)
	for _, n := range notifications {
		ids = append(ids, n.ID.String())
		userIDs = append(userIDs, n.UserID.String())
		titles = append(titles, n.Title)
		bodies = append(bodies, n.Body)
		notices = append(notices, nullNoticeID(n.NoticeID))
		inquiries = append(inquiries, nullInquiryID(n.InquiryID))
		documents = append(documents, nullDocumentID(n.DocumentID))
		createdAts = append(createdAts, n.CreatedAt)
	}

	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, body, is_read, notice_id, inquiry_id, document_id, created_at)
		 SELECT t.id, t.user_id, t.title, t.body, FALSE, t.notice_id, t.inquiry_id, t.document_id, t.created_at
		 FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::uuid[], $6::uuid[], $7::uuid[], $8::timestamptz[])
		   AS t(id, user_id, title, body, notice_id, inquiry_id, document_id, created_at)`,
		pq.Array(ids), pq.Array(userIDs), pq.Array(titles), pq.Array(bodies),
		pq.Array(notices), pq.Array(inquiries), pq.Array(documents), pq.Array(createdAts),
	)
	if err != nil {
		return fmt.Errorf("bulk insert notifications: %w", err)
	}
	return nil
}

func nullNoticeID(v *id.NoticeID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullInquiryID(v *id.InquiryID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullDocumentID(v *id.DocumentID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func (s *Postgres) List(ctx context.Context, userID id.UserID, onlyUnread bool, limit, offset int) ([]*models.Notification, int, error) {
	query := `SELECT id, user_id, title, body, is_read, notice_id, inquiry_id, document_id, created_at,
		COUNT(*) OVER() AS total
		FROM notifications WHERE user_id = $1`
	if onlyUnread {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := s.q(ctx).QueryContext(ctx, query, userID.String(), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var (
		out   []*models.Notification
		total int
	)
	for rows.Next() {
		n, scanErr := scanNotification(rows, &total)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (s *Postgres) Find(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, user_id, title, body, is_read, notice_id, inquiry_id, document_id, created_at, 1
		 FROM notifications WHERE id = $1`,
		notificationID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	var total int
	return scanNotification(rows, &total)
}

func scanNotification(rows *sql.Rows, total *int) (*models.Notification, error) {
	var (
		n          models.Notification
		rawID      string
		rawUser    string
		rawNotice  sql.NullString
		rawInquiry sql.NullString
		rawDoc     sql.NullString
	)
	if err := rows.Scan(&rawID, &rawUser, &n.Title, &n.Body, &n.IsRead,
		&rawNotice, &rawInquiry, &rawDoc, &n.CreatedAt, total); err != nil {
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	var err error
	if n.ID, err = id.ParseNotificationID(rawID); err != nil {
		return nil, err
	}
	if n.UserID, err = id.ParseUserID(rawUser); err != nil {
		return nil, err
	}
	if rawNotice.Valid {
		noticeID, err := id.ParseNoticeID(rawNotice.String)
		if err != nil {
			return nil, err
		}
		n.NoticeID = &noticeID
	}
	if rawInquiry.Valid {
		inquiryID, err := id.ParseInquiryID(rawInquiry.String)
		if err != nil {
			return nil, err
		}
		n.InquiryID = &inquiryID
	}
	if rawDoc.Valid {
		documentID, err := id.ParseDocumentID(rawDoc.String)
		if err != nil {
			return nil, err
		}
		n.DocumentID = &documentID
	}
	return &n, nil
}

func (s *Postgres) MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID.String(), userID.String(),
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`,
		userID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(affected), nil
}

func (s *Postgres) CountUnread(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
