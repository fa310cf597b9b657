package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"isleport/internal/content/models"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/platform/tx"
)

// Postgres stores content items in PostgreSQL. Queries run against the
// transaction in the context when one is present.
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

func (s *Postgres) CreateNotice(ctx context.Context, notice *models.Notice) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO notices (id, author_id, title, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		notice.ID.String(), notice.AuthorID.String(), notice.Title, notice.Body, notice.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

func (s *Postgres) FindNotice(ctx context.Context, noticeID id.NoticeID) (*models.Notice, error) {
	var (
		notice    models.Notice
		rawID     string
		rawAuthor string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, author_id, title, body, created_at FROM notices WHERE id = $1`,
		noticeID.String(),
	).Scan(&rawID, &rawAuthor, &notice.Title, &notice.Body, &notice.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find notice: %w", err)
	}
	if notice.ID, err = id.ParseNoticeID(rawID); err != nil {
		return nil, err
	}
	if notice.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
		return nil, err
	}
	return &notice, nil
}

func (s *Postgres) ListNotices(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Notice, int, error) {
	where, args := listConditions("author_id", scope, filters, false)
	query := `SELECT id, author_id, title, body, created_at, COUNT(*) OVER() AS total
		FROM notices` + where + orderAndPage(page, len(args))
	args = append(args, page.Size, page.Offset())

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	var (
		out   []*models.Notice
		total int
	)
	for rows.Next() {
		var (
			notice    models.Notice
			rawID     string
			rawAuthor string
		)
		if err := rows.Scan(&rawID, &rawAuthor, &notice.Title, &notice.Body, &notice.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan notice: %w", err)
		}
		if notice.ID, err = id.ParseNoticeID(rawID); err != nil {
			return nil, 0, err
		}
		if notice.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
			return nil, 0, err
		}
		out = append(out, &notice)
	}
	return out, total, rows.Err()
}

func (s *Postgres) CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO inquiries (id, author_id, title, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		inquiry.ID.String(), inquiry.AuthorID.String(), inquiry.Title, inquiry.Body, inquiry.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

func (s *Postgres) FindInquiry(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error) {
	var (
		inquiry   models.Inquiry
		rawID     string
		rawAuthor string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, author_id, title, body, created_at FROM inquiries WHERE id = $1`,
		inquiryID.String(),
	).Scan(&rawID, &rawAuthor, &inquiry.Title, &inquiry.Body, &inquiry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find inquiry: %w", err)
	}
	if inquiry.ID, err = id.ParseInquiryID(rawID); err != nil {
		return nil, err
	}
	if inquiry.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (s *Postgres) ListInquiries(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Inquiry, int, error) {
	where, args := listConditions("author_id", scope, filters, false)
	query := `SELECT id, author_id, title, body, created_at, COUNT(*) OVER() AS total
		FROM inquiries` + where + orderAndPage(page, len(args))
	args = append(args, page.Size, page.Offset())

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var (
		out   []*models.Inquiry
		total int
	)
	for rows.Next() {
		var (
			inquiry   models.Inquiry
			rawID     string
			rawAuthor string
		)
		if err := rows.Scan(&rawID, &rawAuthor, &inquiry.Title, &inquiry.Body, &inquiry.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan inquiry: %w", err)
		}
		if inquiry.ID, err = id.ParseInquiryID(rawID); err != nil {
			return nil, 0, err
		}
		if inquiry.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
			return nil, 0, err
		}
		out = append(out, &inquiry)
	}
	return out, total, rows.Err()
}

func (s *Postgres) CreateDocument(ctx context.Context, document *models.Document) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, name, status, edit_request_reason, edit_completed_at, approved_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		document.ID.String(), document.OwnerID.String(), document.Name, string(document.Status),
		document.EditRequestReason, document.EditCompletedAt, document.ApprovedAt, document.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) FindDocument(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, owner_id, name, status, edit_request_reason, edit_completed_at, approved_at, created_at
		 FROM documents WHERE id = $1`,
		documentID.String(),
	)
	return scanDocument(row.Scan)
}

func (s *Postgres) UpdateDocument(ctx context.Context, document *models.Document) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE documents
		 SET status = $2, edit_request_reason = $3, edit_completed_at = $4, approved_at = $5
		 WHERE id = $1`,
		document.ID.String(), string(document.Status),
		document.EditRequestReason, document.EditCompletedAt, document.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListDocuments(ctx context.Context, scope visibility.AuthorScope, filters models.Filters, page models.Page) ([]*models.Document, int, error) {
	where, args := listConditions("d.owner_id", scope, filters, true)
	query := `SELECT d.id, d.owner_id, d.name, d.status, d.edit_request_reason, d.edit_completed_at, d.approved_at, d.created_at,
		COUNT(*) OVER() AS total
		FROM documents d` + where + orderAndPageAliased(page, len(args))
	args = append(args, page.Size, page.Offset())

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var (
		out   []*models.Document
		total int
	)
	for rows.Next() {
		var (
			document  models.Document
			rawID     string
			rawOwner  string
			rawStatus string
		)
		if err := rows.Scan(&rawID, &rawOwner, &document.Name, &rawStatus,
			&document.EditRequestReason, &document.EditCompletedAt, &document.ApprovedAt,
			&document.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		if document.ID, err = id.ParseDocumentID(rawID); err != nil {
			return nil, 0, err
		}
		if document.OwnerID, err = id.ParseUserID(rawOwner); err != nil {
			return nil, 0, err
		}
		document.Status = models.DocumentStatus(rawStatus)
		out = append(out, &document)
	}
	return out, total, rows.Err()
}

func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var (
		document  models.Document
		rawID     string
		rawOwner  string
		rawStatus string
	)
	err := scan(&rawID, &rawOwner, &document.Name, &rawStatus,
		&document.EditRequestReason, &document.EditCompletedAt, &document.ApprovedAt, &document.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if document.ID, err = id.ParseDocumentID(rawID); err != nil {
		return nil, err
	}
	if document.OwnerID, err = id.ParseUserID(rawOwner); err != nil {
		return nil, err
	}
	document.Status = models.DocumentStatus(rawStatus)
	return &document, nil
}

// listConditions builds the WHERE clause shared by the list queries.
// authorCol is the author/owner column; documents additionally support
// status and region/island membership filters.
func listConditions(authorCol string, scope visibility.AuthorScope, filters models.Filters, isDocument bool) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !scope.All {
		authors := make([]string, 0, len(scope.AuthorIDs))
		for _, authorID := range scope.AuthorIDs {
			authors = append(authors, authorID.String())
		}
		conds = append(conds, authorCol+" = ANY("+arg(pq.Array(authors))+")")
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		if isDocument {
			conds = append(conds, "d.name ILIKE "+arg(pattern))
		} else {
			placeholder := arg(pattern)
			conds = append(conds, "(title ILIKE "+placeholder+" OR body ILIKE "+placeholder+")")
		}
	}
	if filters.CreatedFrom != nil {
		conds = append(conds, prefixed("created_at", isDocument)+" >= "+arg(*filters.CreatedFrom))
	}
	if filters.CreatedTo != nil {
		conds = append(conds, prefixed("created_at", isDocument)+" <= "+arg(*filters.CreatedTo))
	}
	if isDocument {
		if filters.Status != "" {
			conds = append(conds, "d.status = "+arg(string(filters.Status)))
		}
		if !filters.IslandID.IsNil() {
			conds = append(conds, `d.owner_id IN (
				SELECT user_id FROM user_islands WHERE island_id = `+arg(filters.IslandID.String())+`)`)
		} else if !filters.RegionID.IsNil() {
			conds = append(conds, `d.owner_id IN (
				SELECT ui.user_id FROM user_islands ui
				JOIN islands i ON i.id = ui.island_id
				WHERE i.region_id = `+arg(filters.RegionID.String())+`)`)
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func prefixed(col string, isDocument bool) string {
	if isDocument {
		return "d." + col
	}
	return col
}

func orderAndPage(page models.Page, argCount int) string {
	dir := " DESC"
	if page.Sort == models.SortOldestFirst {
		dir = " ASC"
	}
	return " ORDER BY created_at" + dir +
		" LIMIT $" + strconv.Itoa(argCount+1) +
		" OFFSET $" + strconv.Itoa(argCount+2)
}

func orderAndPageAliased(page models.Page, argCount int) string {
	dir := " DESC"
	if page.Sort == models.SortOldestFirst {
		dir = " ASC"
	}
	return " ORDER BY d.created_at" + dir +
		" LIMIT $" + strconv.Itoa(argCount+1) +
		" OFFSET $" + strconv.Itoa(argCount+2)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
