package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Actor is the identity an action is attributed to
type Actor struct {
	ID    int
	Name  string
	Email string
}

// SystemActor is used when no principal is present
var SystemActor = Actor{ID: 0, Name: "SYSTEM"}

// ActorFromUser converts a user record to an Actor
func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Details renders the actor as "<name> <email>", or just the name when the
// email is blank.
func (a Actor) Details() string {
	return strings.TrimSpace(a.Name + " " + formatEmail(a.Email))
}

// Resolver works out who performed an action and from where
type Resolver struct {
	users store.UsersStore
}

// NewResolver creates a resolver backed by users
func NewResolver(users store.UsersStore) *Resolver {
	return &Resolver{users: users}
}

// ResolveActor returns the actor for the principal in ctx. Without a
// principal it returns SystemActor and never fails.
func (r *Resolver) ResolveActor(ctx context.Context) (Actor, error) {
	id, ok := identity.Get(ctx)
	if !ok {
		return SystemActor, nil
	}

	user, err := r.ResolveUser(ctx, id.UserID)
	if err != nil {
		return Actor{}, err
	}
	return ActorFromUser(user), nil
}

// ResolveUser looks up a user referenced by an identity or a payload. A
// missing user is a consistency violation, not a normal miss.
func (r *Resolver) ResolveUser(ctx context.Context, id int) (*model.User, error) {
	user, err := r.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && user == nil) {
		return nil, fmt.Errorf("%w: no user with id %d", ErrConsistencyViolation, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return user, nil
}

// ResolveCallerAddress returns the normalized caller address stored in ctx
func (r *Resolver) ResolveCallerAddress(ctx context.Context) string {
	return NormalizeAddress(identity.RemoteAddr(ctx))
}

// NormalizeAddress maps the "unknown" sentinel some proxies send to ""
func NormalizeAddress(addr string) string {
	if strings.HasPrefix(strings.ToLower(addr), "unknown") {
		return ""
	}
	return addr
}
