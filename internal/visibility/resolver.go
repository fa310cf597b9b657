// Package visibility computes, per actor and content class, the set of
// author identities whose content the actor may list and read. Scopes
// are computed from the org graph at query time; nothing is stored on
// content items.
package visibility

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"isleport/internal/org"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// AuthorScope is the outcome of resolution: either "all authors" or an
// explicit author set. An empty explicit set means no visibility at all,
// never "all"; callers must short-circuit on it before touching a store.
type AuthorScope struct {
	All       bool
	AuthorIDs []id.UserID
}

// IsEmpty reports whether the scope grants no visibility.
func (s AuthorScope) IsEmpty() bool {
	return !s.All && len(s.AuthorIDs) == 0
}

// Contains reports whether the scope covers the given author.
func (s AuthorScope) Contains(authorID id.UserID) bool {
	if s.All {
		return true
	}
	for _, v := range s.AuthorIDs {
		if v == authorID {
			return true
		}
	}
	return false
}

// Resolver resolves actor visibility against the org directory.
type Resolver struct {
	directory org.Directory
}

func NewResolver(directory org.Directory) *Resolver {
	return &Resolver{directory: directory}
}

// ResolveVisibleAuthors computes the actor's author scope for one
// content class.
//
// Rules:
//   - SUPERADMIN sees all authors for every class.
//   - ADMIN sees the users on islands inside its regions plus all
//     superadmins. An ADMIN with zero region memberships resolves to the
//     empty scope without touching the directory.
//   - USER sees itself plus all superadmins, and, for notices only, the
//     admins of the regions its islands belong to.
//   - An unknown role is fatal; resolution never defaults to all or none.
func (r *Resolver) ResolveVisibleAuthors(ctx context.Context, actor id.Actor, class id.ContentClass) (AuthorScope, error) {
	if !class.IsValid() {
		return AuthorScope{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown content class %q", class)
	}

	switch actor.Role {
	case id.RoleSuperadmin:
		return AuthorScope{All: true}, nil
	case id.RoleAdmin:
		return r.resolveAdmin(ctx, actor)
	case id.RoleUser:
		return r.resolveUser(ctx, actor, class)
	default:
		return AuthorScope{}, dErrors.Newf(dErrors.CodeInvalidActor, "unknown role %q", actor.Role)
	}
}

func (r *Resolver) resolveAdmin(ctx context.Context, actor id.Actor) (AuthorScope, error) {
	if len(actor.RegionIDs) == 0 {
		return AuthorScope{}, nil
	}

	var (
		regionUsers []id.UserID
		superadmins []id.UserID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		islands, err := r.directory.IslandsInRegions(gctx, actor.RegionIDs)
		if err != nil {
			return err
		}
		regionUsers, err = r.directory.UsersOnIslands(gctx, islands)
		return err
	})
	g.Go(func() error {
		var err error
		superadmins, err = r.directory.UsersByRole(gctx, id.RoleSuperadmin)
		return err
	})
	if err := g.Wait(); err != nil {
		return AuthorScope{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve admin scope")
	}

	return explicitScope(regionUsers, superadmins), nil
}

func (r *Resolver) resolveUser(ctx context.Context, actor id.Actor, class id.ContentClass) (AuthorScope, error) {
	superadmins, err := r.directory.UsersByRole(ctx, id.RoleSuperadmin)
	if err != nil {
		return AuthorScope{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user scope")
	}

	authors := [][]id.UserID{{actor.UserID}, superadmins}

	// Notices additionally surface the regional admins' announcements.
	if class == id.ClassNotice && len(actor.IslandIDs) > 0 {
		regions, err := r.directory.RegionsOfIslands(ctx, actor.IslandIDs)
		if err != nil {
			return AuthorScope{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user scope")
		}
		admins, err := r.directory.AdminsInRegions(ctx, regions)
		if err != nil {
			return AuthorScope{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user scope")
		}
		authors = append(authors, admins)
	}

	return explicitScope(authors...), nil
}

func explicitScope(sets ...[]id.UserID) AuthorScope {
	seen := make(map[id.UserID]struct{})
	var out []id.UserID
	for _, set := range sets {
		for _, userID := range set {
			if _, dup := seen[userID]; dup {
				continue
			}
			seen[userID] = struct{}{}
			out = append(out, userID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return AuthorScope{AuthorIDs: out}
}
