package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// State is the router's registration state
type State int32

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Collaborators are the lookups the router needs to describe subjects
type Collaborators struct {
	Users      store.UsersStore
	Members    store.MembersStore
	UserGroups store.UserGroupsStore
	Entities   store.EntitiesStore
}

// Router subscribes to event sources and turns each event into audit
// entries appended to a sink. Handlers run on the raiser's goroutine.
type Router struct {
	resolver *Resolver
	members  store.MembersStore
	groups   store.UserGroupsStore
	entities store.EntitiesStore
	sink     Sink
	logger   *zap.Logger
	metrics  *Metrics
	now      func() time.Time

	mu      sync.Mutex
	state   State
	sources []events.Source
	kinds   []events.Kind

	inFlight atomic.Int64
}

// Option configures a Router
type Option func(*Router)

// WithLogger sets the router's logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the router's metrics
func WithMetrics(m *Metrics) Option {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithClock sets the clock used to timestamp entries
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRouter creates an unregistered router
func NewRouter(c Collaborators, sink Sink, opts ...Option) *Router {
	r := &Router{
		resolver: NewResolver(c.Users),
		members:  c.Members,
		groups:   c.UserGroups,
		entities: c.Entities,
		sink:     sink,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	return r
}

// Register subscribes one handler per audited kind on every source. It can
// be called once; later calls return ErrAlreadyRegistered.
func (r *Router) Register(sources ...events.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRegistered {
		return ErrAlreadyRegistered
	}

	handlers := r.handlers()
	kinds := make([]events.Kind, 0, len(handlers))
	for kind := range handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, src := range sources {
		for _, kind := range kinds {
			src.Subscribe(kind, handlers[kind])
		}
	}

	r.sources = append(r.sources, sources...)
	r.kinds = kinds
	r.state = StateRegistered

	r.logger.Info("audit router registered",
		zap.Int("sources", len(sources)),
		zap.Int("kinds", len(kinds)),
		zap.Int("reserved", len(r.Reserved())),
	)
	return nil
}

// State returns the registration state
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscriptions returns the kinds subscribed by Register, in kind order
func (r *Router) Subscriptions() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Sources returns the number of sources the router is subscribed to
func (r *Router) Sources() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

// Reserved returns the recognized kinds that are never audited
func (r *Router) Reserved() []events.Kind {
	var out []events.Kind
	for _, kind := range events.KindValues() {
		if kind.Reserved() {
			out = append(out, kind)
		}
	}
	return out
}

// InFlight returns the number of events being dispatched right now
func (r *Router) InFlight() int64 {
	return r.inFlight.Load()
}

var _ events.Raiser = (*Router)(nil)

// Raise dispatches one event directly, without going through a source.
// Reserved kinds are a no-op.
func (r *Router) Raise(ctx context.Context, kind events.Kind, payload any) error {
	if !kind.IsAKind() {
		return fmt.Errorf("%w: %s", events.ErrUnknownKind, kind)
	}
	h, ok := r.handlers()[kind]
	if !ok {
		return nil
	}
	return h(ctx, payload)
}

func (r *Router) handlers() map[events.Kind]events.Handler {
	h := map[events.Kind]events.Handler{
		events.KindUserSaved:                    r.onUsersSaved,
		events.KindUserDeleted:                  r.onUsersDeleted,
		events.KindUserGroupSaved:               r.onUserGroupsSaved,
		events.KindUserGroupPermissionsAssigned: r.onPermissionsAssigned,
		events.KindMemberSaved:                  r.onMembersSaved,
		events.KindMemberDeleted:                r.onMembersDeleted,
		events.KindMemberRolesAssigned:          r.rolesHandler(events.KindMemberRolesAssigned),
		events.KindMemberRolesRemoved:           r.rolesHandler(events.KindMemberRolesRemoved),
	}
	for kind := range identityRules {
		h[kind] = r.identityHandler(kind)
	}
	return h
}

func (r *Router) identityHandler(kind events.Kind) events.Handler {
	rule := identityRules[kind]
	return func(ctx context.Context, payload any) error {
		ev, ok := events.PayloadAs[events.IdentityEvent](payload)
		if !ok {
			return r.unexpected(kind, payload)
		}

		return r.dispatch(ctx, kind, func(at time.Time) ([]Entry, error) {
			if rule.skipNegative && ev.PerformingUserID < 0 {
				return nil, errSkipped
			}

			performer, err := r.resolver.ResolveUser(ctx, ev.PerformingUserID)
			if err != nil {
				return nil, err
			}

			var affected *model.User
			if rule.subject {
				if affected, err = r.resolver.ResolveUser(ctx, ev.AffectedUserID); err != nil {
					return nil, err
				}
			}

			ac := ActorContext{Actor: ActorFromUser(performer), IP: ev.IPAddress, At: at}
			entry, err := FormatIdentityEvent(ac, kind, affected)
			if err != nil {
				return nil, err
			}
			return []Entry{entry}, nil
		})
	}
}

func (r *Router) onUsersSaved(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.UsersSaved](payload)
	if !ok {
		return r.unexpected(events.KindUserSaved, payload)
	}
	return r.dispatch(ctx, events.KindUserSaved, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		return FormatUsersSaved(ac, ev), nil
	})
}

func (r *Router) onUsersDeleted(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.UsersDeleted](payload)
	if !ok {
		return r.unexpected(events.KindUserDeleted, payload)
	}
	return r.dispatch(ctx, events.KindUserDeleted, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		return FormatUsersDeleted(ac, ev), nil
	})
}

func (r *Router) onUserGroupsSaved(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.UserGroupsSaved](payload)
	if !ok {
		return r.unexpected(events.KindUserGroupSaved, payload)
	}
	return r.dispatch(ctx, events.KindUserGroupSaved, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		return FormatUserGroupsSaved(ac, ev), nil
	})
}

func (r *Router) onPermissionsAssigned(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.PermissionsAssigned](payload)
	if !ok {
		return r.unexpected(events.KindUserGroupPermissionsAssigned, payload)
	}
	return r.dispatch(ctx, events.KindUserGroupPermissionsAssigned, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		if len(ev.Permissions) == 0 {
			return nil, nil
		}

		groupIDs := make([]int, 0, len(ev.Permissions))
		entityIDs := make([]int, 0, len(ev.Permissions))
		for _, p := range ev.Permissions {
			groupIDs = append(groupIDs, p.UserGroupID)
			entityIDs = append(entityIDs, p.EntityID)
		}

		groups, err := r.groups.GetUserGroupsByIDs(ctx, groupIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user groups: %w", err)
		}
		entities, err := r.entities.GetEntitiesByIDs(ctx, entityIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to look up entities: %w", err)
		}
		return FormatPermissionsAssigned(ac, ev, groups, entities)
	})
}

func (r *Router) onMembersSaved(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.MembersSaved](payload)
	if !ok {
		return r.unexpected(events.KindMemberSaved, payload)
	}
	return r.dispatch(ctx, events.KindMemberSaved, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		return FormatMembersSaved(ac, ev), nil
	})
}

func (r *Router) onMembersDeleted(ctx context.Context, payload any) error {
	ev, ok := events.PayloadAs[events.MembersDeleted](payload)
	if !ok {
		return r.unexpected(events.KindMemberDeleted, payload)
	}
	return r.dispatch(ctx, events.KindMemberDeleted, func(at time.Time) ([]Entry, error) {
		ac, err := r.actorContext(ctx, at)
		if err != nil {
			return nil, err
		}
		return FormatMembersDeleted(ac, ev), nil
	})
}

func (r *Router) rolesHandler(kind events.Kind) events.Handler {
	return func(ctx context.Context, payload any) error {
		ev, ok := events.PayloadAs[events.RolesChanged](payload)
		if !ok {
			return r.unexpected(kind, payload)
		}
		return r.dispatch(ctx, kind, func(at time.Time) ([]Entry, error) {
			ac, err := r.actorContext(ctx, at)
			if err != nil {
				return nil, err
			}
			if len(ev.MemberIDs) == 0 {
				return nil, nil
			}

			members, err := r.members.GetMembersByIDs(ctx, ev.MemberIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to look up members: %w", err)
			}
			return FormatRolesChanged(ac, kind, ev, members)
		})
	}
}

// actorContext resolves the ambient performing context once per event
func (r *Router) actorContext(ctx context.Context, at time.Time) (ActorContext, error) {
	actor, err := r.resolver.ResolveActor(ctx)
	if err != nil {
		return ActorContext{}, err
	}
	return ActorContext{Actor: actor, IP: r.resolver.ResolveCallerAddress(ctx), At: at}, nil
}

// dispatch builds the entries for one event, validates all of them, then
// appends them in order. The first failure is returned to the raiser.
func (r *Router) dispatch(ctx context.Context, kind events.Kind, build func(at time.Time) ([]Entry, error)) error {
	r.inFlight.Add(1)
	r.metrics.InFlight.Inc()
	start := time.Now()
	defer func() {
		r.inFlight.Add(-1)
		r.metrics.InFlight.Dec()
		r.metrics.DispatchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	}()

	log := r.logger.With(
		zap.String("dispatch_id", uuid.NewString()),
		zap.Stringer("kind", kind),
	)

	entries, err := build(r.now().UTC())
	if errors.Is(err, errSkipped) {
		r.metrics.EventsSkipped.WithLabelValues(kind.String()).Inc()
		log.Debug("audit event skipped by policy")
		return nil
	}
	if err != nil {
		return r.fail(log, kind, err)
	}

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return r.fail(log, kind, err)
		}
	}

	for i, entry := range entries {
		if err := r.sink.Append(ctx, entry); err != nil {
			log.Error("failed to append audit entry",
				zap.String("tag", string(entry.EventType)),
				zap.Int("index", i),
				zap.Int("entries", len(entries)),
				zap.Error(err),
			)
			r.metrics.EventsFailed.WithLabelValues(kind.String(), "sink").Inc()
			return fmt.Errorf("%w: append %s entry: %w", ErrSinkFailure, entry.EventType, err)
		}
		r.metrics.EntriesAppended.WithLabelValues(string(entry.EventType)).Inc()
	}

	if len(entries) > 0 {
		log.Debug("audit entries appended",
			zap.Int("entries", len(entries)),
			zap.Int("performing_user_id", entries[0].PerformingUserID),
		)
	}
	return nil
}

func (r *Router) fail(log *zap.Logger, kind events.Kind, err error) error {
	reason := failureReason(err)
	r.metrics.EventsFailed.WithLabelValues(kind.String(), reason).Inc()
	log.Error("failed to audit event", zap.String("reason", reason), zap.Error(err))
	return err
}

func (r *Router) unexpected(kind events.Kind, payload any) error {
	r.metrics.EventsFailed.WithLabelValues(kind.String(), "payload").Inc()
	r.logger.Error("unexpected payload",
		zap.Stringer("kind", kind),
		zap.String("payload_type", fmt.Sprintf("%T", payload)),
	)
	return fmt.Errorf("%w: %T for %s", ErrUnexpectedPayload, payload, kind)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrConsistencyViolation):
		return "consistency"
	case errors.Is(err, ErrInvalidEntry):
		return "invalid"
	default:
		return "lookup"
	}
}
