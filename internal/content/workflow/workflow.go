// Package workflow implements the document review state machine.
//
// States: SUBMITTED → EDIT_REQUESTED → EDIT_COMPLETED → UNDER_REVIEW →
// APPROVED. EDIT_REQUESTED is re-enterable from any state, including
// APPROVED (reopening). EDIT_COMPLETED is reachable only by the owning
// user answering an edit request.
package workflow

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"isleport/internal/content/models"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Effect describes the owner-addressed notification a transition
// produces. Only EDIT_REQUESTED and APPROVED notify the owner; the
// other states are intentionally silent.
type Effect struct {
	NotifyOwner bool
	Title       string
	Body        string

	// Resubmitted marks the EDIT_COMPLETED move, which additionally
	// fans out a DocumentEdited event to the reviewing admins.
	Resubmitted bool
}

type transitionRule struct {
	from  map[models.DocumentStatus]struct{}
	roles map[id.Role]struct{}
	// ownerOnly restricts the transition to the document's owning user.
	ownerOnly bool
	// reasonRequired rejects the transition without a non-empty reason.
	reasonRequired bool
}

func statuses(list ...models.DocumentStatus) map[models.DocumentStatus]struct{} {
	out := make(map[models.DocumentStatus]struct{}, len(list))
	for _, s := range list {
		out[s] = struct{}{}
	}
	return out
}

func roles(list ...id.Role) map[id.Role]struct{} {
	out := make(map[id.Role]struct{}, len(list))
	for _, r := range list {
		out[r] = struct{}{}
	}
	return out
}

var transitions = map[models.DocumentStatus]transitionRule{
	models.StatusEditRequested: {
		from: statuses(models.StatusSubmitted, models.StatusEditRequested,
			models.StatusEditCompleted, models.StatusUnderReview, models.StatusApproved),
		roles:          roles(id.RoleAdmin, id.RoleSuperadmin),
		reasonRequired: true,
	},
	models.StatusEditCompleted: {
		from:      statuses(models.StatusEditRequested),
		roles:     roles(id.RoleUser),
		ownerOnly: true,
	},
	models.StatusUnderReview: {
		from:  statuses(models.StatusSubmitted, models.StatusEditCompleted),
		roles: roles(id.RoleAdmin, id.RoleSuperadmin),
	},
	models.StatusApproved: {
		from:  statuses(models.StatusUnderReview),
		roles: roles(id.RoleAdmin, id.RoleSuperadmin),
	},
}

// CanTransition validates a requested move without applying it.
func CanTransition(doc *models.Document, target models.DocumentStatus, actor id.Actor, reason string) error {
	if !target.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown document status %q", target)
	}
	rule, ok := transitions[target]
	if !ok {
		// SUBMITTED is assigned at creation and never re-entered.
		return dErrors.Newf(dErrors.CodeTransitionNotAllowed, "%s cannot be entered by transition", target)
	}
	if _, ok := rule.from[doc.Status]; !ok {
		return dErrors.Newf(dErrors.CodeTransitionNotAllowed, "cannot move from %s to %s", doc.Status, target)
	}
	if _, ok := rule.roles[actor.Role]; !ok {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not move a document to %s", actor.Role, target)
	}
	if rule.ownerOnly && actor.UserID != doc.OwnerID {
		return dErrors.New(dErrors.CodeForbidden, "only the document owner may complete an edit")
	}
	if rule.reasonRequired && strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "an edit request requires a reason")
	}
	return nil
}

// Apply performs a validated transition, stamping dates and returning
// the notification effect. Call CanTransition first; Apply revalidates
// and fails identically on an illegal move.
func Apply(doc *models.Document, target models.DocumentStatus, actor id.Actor, reason string, now time.Time) (Effect, error) {
	if err := CanTransition(doc, target, actor, reason); err != nil {
		return Effect{}, err
	}

	doc.Status = target
	switch target {
	case models.StatusEditRequested:
		doc.EditRequestReason = strings.TrimSpace(reason)
		return Effect{
			NotifyOwner: true,
			Title:       "Edit requested: " + doc.Name,
			Body:        doc.EditRequestReason,
		}, nil
	case models.StatusEditCompleted:
		stamp := now
		doc.EditCompletedAt = &stamp
		return Effect{Resubmitted: true}, nil
	case models.StatusApproved:
		stamp := now
		doc.ApprovedAt = &stamp
		return Effect{
			NotifyOwner: true,
			Title:       "Approved: " + doc.Name,
			Body:        "Your document has been approved.",
		}, nil
	default:
		return Effect{}, nil
	}
}

var versionToken = regexp.MustCompile(`[Vv]([0-9]+)\s*$`)

// NextVersion parses the trailing V<n> token of a document name and
// returns n+1. ok is false when the name carries no parsable token;
// callers fall back to version 1.
func NextVersion(name string) (int, bool) {
	match := versionToken.FindStringSubmatch(strings.TrimSpace(name))
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n + 1, true
}

// NextVersionName derives the name for a document's next version,
// replacing the trailing version token or appending V1 when the prior
// name has none.
func NextVersionName(name string) string {
	trimmed := strings.TrimSpace(name)
	if next, ok := NextVersion(trimmed); ok {
		base := strings.TrimSpace(versionToken.ReplaceAllString(trimmed, ""))
		return base + " V" + strconv.Itoa(next)
	}
	return trimmed + " V1"
}
