// Package fanout turns domain events into persisted notification rows.
// Recipient computation is table-driven per (event kind, actor role);
// the triggering actor is always excluded. The engine performs no
// dedupe across retries; callers run it at most once per mutation.
package fanout

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"isleport/internal/fanout/events"
	"isleport/internal/fanout/metrics"
	notifmodels "isleport/internal/notification/models"
	"isleport/internal/org"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/requestcontext"
)

// Inserter is the slice of the notification store the engine writes to.
type Inserter interface {
	BulkInsert(ctx context.Context, notifications []*notifmodels.Notification) error
}

// Invalidator drops cached unread counters after a delivery.
type Invalidator interface {
	InvalidateUnread(ctx context.Context, userIDs ...id.UserID)
}

// Publisher mirrors delivered events onto the notification stream.
type Publisher interface {
	Publish(ctx context.Context, event events.Event, recipients []id.UserID) error
}

type Engine struct {
	directory   org.Directory
	inserter    Inserter
	invalidator Invalidator
	publisher   Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Engine)

// WithInvalidator wires unread-counter invalidation after deliveries.
func WithInvalidator(inv Invalidator) Option {
	return func(e *Engine) { e.invalidator = inv }
}

// WithPublisher mirrors deliveries onto the Kafka notification stream.
// Publish failures are logged, never surfaced; the rows are the source
// of truth.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(directory org.Directory, inserter Inserter, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		directory: directory,
		inserter:  inserter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FanOut computes the recipient set for the event and persists one
// notification row per recipient. Zero recipients is a valid no-op. The
// returned error is infrastructure-flavored; callers that have already
// committed their primary mutation wrap it as a partial fan-out.
func (e *Engine) FanOut(ctx context.Context, event events.Event) error {
	if !event.Actor.Role.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidActor, "unknown role %q", event.Actor.Role)
	}

	strat, ok := strategies[strategyKey{kind: event.Kind, role: event.Actor.Role}]
	if !ok {
		e.logger.DebugContext(ctx, "no fan-out strategy", "kind", event.Kind, "role", event.Actor.Role)
		return nil
	}
	if e.metrics != nil {
		e.metrics.EventsTotal.WithLabelValues(string(event.Kind)).Inc()
	}

	raw, err := strat(ctx, e.directory, event)
	if err != nil {
		e.countFailure(event)
		return dErrors.Wrap(err, dErrors.CodeInternal, "compute fan-out recipients")
	}

	recipients := dedupeExcluding(raw, event.Actor.UserID)
	if len(recipients) == 0 {
		return nil
	}

	rows, err := e.buildRows(ctx, event, recipients)
	if err != nil {
		e.countFailure(event)
		return err
	}
	if err := e.inserter.BulkInsert(ctx, rows); err != nil {
		e.countFailure(event)
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist notifications")
	}
	if e.metrics != nil {
		e.metrics.RecipientsTotal.WithLabelValues(string(event.Kind)).Add(float64(len(recipients)))
	}

	if e.invalidator != nil {
		e.invalidator.InvalidateUnread(ctx, recipients...)
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, event, recipients); err != nil {
			e.logger.WarnContext(ctx, "notification stream publish failed",
				"kind", event.Kind, "error", err)
		}
	}

	e.logger.InfoContext(ctx, "fan-out delivered",
		"kind", event.Kind, "actor_id", event.Actor.UserID, "recipients", len(recipients))
	return nil
}

func (e *Engine) buildRows(ctx context.Context, event events.Event, recipients []id.UserID) ([]*notifmodels.Notification, error) {
	title, body := notificationContent(event)
	now := event.OccurredAt
	if now.IsZero() {
		now = requestcontext.Now(ctx)
	}

	rows := make([]*notifmodels.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		row, err := notifmodels.New(id.NotificationID(uuid.New()), recipient, title, body, now)
		if err != nil {
			return nil, err
		}
		if event.ContentID != uuid.Nil {
			if err := row.SetReference(event.ContentClass, event.ContentID.String()); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func notificationContent(event events.Event) (string, string) {
	switch event.Kind {
	case events.KindNoticeCreated:
		return "New notice: " + event.Title, event.Body
	case events.KindInquiryCreated:
		return "New inquiry: " + event.Title, event.Body
	case events.KindDocumentEdited:
		return "Document resubmitted: " + event.Title, event.Body
	case events.KindUserSignedUp:
		return "New member signup: " + event.Title, event.Body
	case events.KindDocumentStatusChanged:
		return event.Title, event.Body
	default:
		return event.Title, event.Body
	}
}

func (e *Engine) countFailure(event events.Event) {
	if e.metrics != nil {
		e.metrics.FailuresTotal.WithLabelValues(string(event.Kind)).Inc()
	}
}

// dedupeExcluding removes duplicates and the acting user, returning a
// deterministic order.
func dedupeExcluding(userIDs []id.UserID, actorID id.UserID) []id.UserID {
	seen := make(map[id.UserID]struct{}, len(userIDs))
	var out []id.UserID
	for _, userID := range userIDs {
		if userID == actorID {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
