// Package service implements content creation and the document review
// workflow. Status changes and their fan-out run as one unit of work;
// fan-out failure after the committed change surfaces as a distinct
// partial failure.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"isleport/internal/content/models"
	"isleport/internal/content/store"
	"isleport/internal/content/workflow"
	"isleport/internal/fanout/events"
	"isleport/internal/visibility"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/platform/tx"
	"isleport/pkg/requestcontext"
)

// Notifier triggers notification fan-out for content events.
type Notifier interface {
	FanOut(ctx context.Context, event events.Event) error
}

type noopNotifier struct{}

func (noopNotifier) FanOut(context.Context, events.Event) error { return nil }

type Service struct {
	store    store.Store
	resolver *visibility.Resolver
	notifier Notifier
	runner   tx.Runner
	tracer   trace.Tracer
	logger   *slog.Logger
}

type Option func(*Service)

// WithNotifier wires the fan-out engine.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithTxRunner wires transactional execution for workflow mutations.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.runner = r }
}

func New(store store.Store, resolver *visibility.Resolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		notifier: noopNotifier{},
		runner:   tx.NoopRunner{},
		tracer:   otel.Tracer("isleport/content"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNotice publishes an announcement and fans it out. Only admins
// and superadmins author notices.
func (s *Service) CreateNotice(ctx context.Context, actor id.Actor, title, body string) (*models.Notice, error) {
	if actor.Role != id.RoleAdmin && actor.Role != id.RoleSuperadmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins may publish notices")
	}

	notice, err := models.NewNotice(id.NoticeID(uuid.New()), actor.UserID, title, body, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateNotice(ctx, notice); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create notice")
	}
	s.logger.InfoContext(ctx, "notice created", "notice_id", notice.ID, "author_id", actor.UserID)

	err = s.notifier.FanOut(ctx, events.Event{
		Kind:         events.KindNoticeCreated,
		Actor:        actor,
		ContentClass: id.ClassNotice,
		ContentID:    uuid.UUID(notice.ID),
		Title:        notice.Title,
		OccurredAt:   notice.CreatedAt,
	})
	if err != nil {
		return notice, dErrors.Wrap(err, dErrors.CodePartialFanout, "notice created but fan-out failed")
	}
	return notice, nil
}

// CreateInquiry records a user's question and fans it out to its
// regional admins.
func (s *Service) CreateInquiry(ctx context.Context, actor id.Actor, title, body string) (*models.Inquiry, error) {
	if actor.Role != id.RoleUser {
		return nil, dErrors.New(dErrors.CodeForbidden, "only users may open inquiries")
	}

	inquiry, err := models.NewInquiry(id.InquiryID(uuid.New()), actor.UserID, title, body, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateInquiry(ctx, inquiry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create inquiry")
	}
	s.logger.InfoContext(ctx, "inquiry created", "inquiry_id", inquiry.ID, "author_id", actor.UserID)

	err = s.notifier.FanOut(ctx, events.Event{
		Kind:         events.KindInquiryCreated,
		Actor:        actor,
		ContentClass: id.ClassInquiry,
		ContentID:    uuid.UUID(inquiry.ID),
		Title:        inquiry.Title,
		OccurredAt:   inquiry.CreatedAt,
	})
	if err != nil {
		return inquiry, dErrors.Wrap(err, dErrors.CodePartialFanout, "inquiry created but fan-out failed")
	}
	return inquiry, nil
}

// CreateDocument submits a new document in the SUBMITTED state.
// Creation itself does not notify anyone.
func (s *Service) CreateDocument(ctx context.Context, actor id.Actor, name string) (*models.Document, error) {
	if actor.Role != id.RoleUser {
		return nil, dErrors.New(dErrors.CodeForbidden, "only users may submit documents")
	}

	document, err := models.NewDocument(id.DocumentID(uuid.New()), actor.UserID, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDocument(ctx, document); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create document")
	}
	s.logger.InfoContext(ctx, "document created", "document_id", document.ID, "owner_id", actor.UserID)
	return document, nil
}

// CreateDocumentVersion submits the next version of an existing
// document: the trailing V<n> token is incremented, or V1 appended when
// the prior name has no parsable token.
func (s *Service) CreateDocumentVersion(ctx context.Context, actor id.Actor, documentID id.DocumentID) (*models.Document, error) {
	prior, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != id.RoleUser || actor.UserID != prior.OwnerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the document owner may submit a new version")
	}

	next, err := models.NewDocument(id.DocumentID(uuid.New()), actor.UserID,
		workflow.NextVersionName(prior.Name), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDocument(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create document version")
	}
	s.logger.InfoContext(ctx, "document version created",
		"document_id", next.ID, "prior_id", prior.ID, "name", next.Name)
	return next, nil
}

// GetDocument returns a document the actor may see; scope misses are
// indistinguishable from missing documents.
func (s *Service) GetDocument(ctx context.Context, actor id.Actor, documentID id.DocumentID) (*models.Document, error) {
	document, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	scope, err := s.resolver.ResolveVisibleAuthors(ctx, actor, id.ClassDocument)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(document.OwnerID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	return document, nil
}

// ChangeDocumentStatus applies a workflow transition inside one unit of
// work and fans out the resulting notifications. Fan-out failure after
// the committed transition is a partial failure: the new status stands.
func (s *Service) ChangeDocumentStatus(ctx context.Context, actor id.Actor, documentID id.DocumentID, target models.DocumentStatus, reason string) (*models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "content.ChangeDocumentStatus",
		trace.WithAttributes(
			attribute.String("document.id", documentID.String()),
			attribute.String("document.target_status", string(target)),
		))
	defer span.End()

	var (
		document *models.Document
		effect   workflow.Effect
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		document, err = s.findDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if err := s.authorizeTransition(ctx, actor, document); err != nil {
			return err
		}

		effect, err = workflow.Apply(document, target, actor, reason, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.store.UpdateDocument(ctx, document); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update document")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "document status changed",
		"document_id", document.ID, "status", document.Status, "actor_id", actor.UserID)

	if err := s.fanOutTransition(ctx, actor, document, effect); err != nil {
		return document, err
	}
	return document, nil
}

// authorizeTransition gates who may touch the document at all; the
// workflow rules then decide whether the specific move is legal.
func (s *Service) authorizeTransition(ctx context.Context, actor id.Actor, document *models.Document) error {
	if actor.Role == id.RoleUser {
		if actor.UserID != document.OwnerID {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil
	}
	scope, err := s.resolver.ResolveVisibleAuthors(ctx, actor, id.ClassDocument)
	if err != nil {
		return err
	}
	if !scope.Contains(document.OwnerID) {
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	return nil
}

func (s *Service) fanOutTransition(ctx context.Context, actor id.Actor, document *models.Document, effect workflow.Effect) error {
	now := requestcontext.Now(ctx)

	if effect.Resubmitted {
		err := s.notifier.FanOut(ctx, events.Event{
			Kind:         events.KindDocumentEdited,
			Actor:        actor,
			ContentClass: id.ClassDocument,
			ContentID:    uuid.UUID(document.ID),
			Title:        document.Name,
			OwnerID:      document.OwnerID,
			OccurredAt:   now,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodePartialFanout, "status committed but fan-out failed")
		}
	}
	if effect.NotifyOwner {
		err := s.notifier.FanOut(ctx, events.Event{
			Kind:         events.KindDocumentStatusChanged,
			Actor:        actor,
			ContentClass: id.ClassDocument,
			ContentID:    uuid.UUID(document.ID),
			Title:        effect.Title,
			Body:         effect.Body,
			Status:       string(document.Status),
			OwnerID:      document.OwnerID,
			OccurredAt:   now,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodePartialFanout, "status committed but fan-out failed")
		}
	}
	return nil
}

func (s *Service) findDocument(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	document, err := s.store.FindDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find document")
	}
	return document, nil
}
