package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

type routerFixture struct {
	users    *MockUsersStore
	members  *MockMembersStore
	groups   *MockUserGroupsStore
	entities *MockEntitiesStore
	sink     *MemorySink
	metrics  *Metrics
	bus      *events.Bus
	router   *Router
}

func newRouterFixture(t *testing.T, sink Sink) *routerFixture {
	t.Helper()

	f := &routerFixture{
		users:    &MockUsersStore{},
		members:  &MockMembersStore{},
		groups:   &MockUserGroupsStore{},
		entities: &MockEntitiesStore{},
		sink:     NewMemorySink(),
		metrics:  NewMetrics(prometheus.NewRegistry()),
		bus:      events.NewBus(),
	}
	if sink == nil {
		sink = f.sink
	}

	f.router = NewRouter(Collaborators{
		Users:      f.users,
		Members:    f.members,
		UserGroups: f.groups,
		Entities:   f.entities,
	}, sink, WithMetrics(f.metrics), WithClock(func() time.Time { return testTime }))

	require.NoError(t, f.router.Register(f.bus))
	return f
}

func (f *routerFixture) withUser(u model.User) {
	f.users.On("GetUserByID", mock.Anything, u.ID).Return(&u, nil)
}

func asJane(ctx context.Context) context.Context {
	ctx = identity.Set(ctx, identity.ForUser(7))
	return identity.SetRemoteAddr(ctx, "10.0.0.1")
}

func TestRouterRegister(t *testing.T) {
	router := NewRouter(Collaborators{}, NewMemorySink())
	assert.Equal(t, StateUnregistered, router.State())

	bus := events.NewBus()
	other := events.NewBus()
	require.NoError(t, router.Register(bus, other))
	assert.Equal(t, StateRegistered, router.State())
	assert.Equal(t, 2, router.Sources())

	assert.ErrorIs(t, router.Register(bus), ErrAlreadyRegistered)

	subscribed := router.Subscriptions()
	assert.Len(t, subscribed, 15)
	for _, kind := range subscribed {
		assert.False(t, kind.Reserved(), kind.String())
		assert.Equal(t, 1, bus.Subscribers(kind), kind.String())
		assert.Equal(t, 1, other.Subscribers(kind), kind.String())
	}

	reserved := router.Reserved()
	assert.ElementsMatch(t, []events.Kind{
		events.KindAccountLocked,
		events.KindAccountUnlocked,
		events.KindLoginRequiresVerification,
		events.KindResetAccessFailedCount,
	}, reserved)
	for _, kind := range reserved {
		assert.Zero(t, bus.Subscribers(kind), kind.String())
	}
}

func TestRouterWithoutPrincipalUsesSystem(t *testing.T) {
	f := newRouterFixture(t, nil)

	err := f.bus.Raise(context.Background(), events.KindMemberSaved, events.MembersSaved{Members: []events.SavedMember{
		{Member: model.Member{ID: 5, Name: "Ann"}},
	}})
	require.NoError(t, err)

	entries := f.sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].PerformingUserID)
	assert.Equal(t, "SYSTEM", entries[0].PerformingDetails)
	assert.Equal(t, "", entries[0].PerformingIP)
	assert.Equal(t, testTime, entries[0].Timestamp)
	f.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

func TestRouterUsersSaved(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.withUser(model.User{ID: 7, Name: "Jane", Email: "jane@example.com"})

	ev := &events.UsersSaved{Users: []events.SavedUser{
		{User: model.User{ID: 11, Name: "Bob"}, Changed: []string{"Name"}},
		{User: model.User{ID: 12, Name: "Ann"}},
	}}
	require.NoError(t, f.bus.Raise(asJane(context.Background()), events.KindUserSaved, ev))

	entries := f.sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "updating Name", entries[0].Comment)
	assert.Equal(t, "updating (nothing)", entries[1].Comment)
	for _, e := range entries {
		assert.Equal(t, 7, e.PerformingUserID)
		assert.Equal(t, "Jane <jane@example.com>", e.PerformingDetails)
		assert.Equal(t, "10.0.0.1", e.PerformingIP)
	}
	f.users.AssertNumberOfCalls(t, "GetUserByID", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.EntriesAppended.WithLabelValues(string(TagUserSave))))
}

func TestRouterMissingPrincipalUser(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.users.On("GetUserByID", mock.Anything, 7).Return(nil, store.ErrNotFound)

	err := f.bus.Raise(asJane(context.Background()), events.KindUserDeleted, events.UsersDeleted{Users: []model.User{{ID: 11}}})
	assert.ErrorIs(t, err, ErrConsistencyViolation)
	assert.Zero(t, f.sink.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsFailed.WithLabelValues("user-deleted", "consistency")))
}

func TestRouterUnknownAddressIsBlank(t *testing.T) {
	f := newRouterFixture(t, nil)

	ctx := identity.SetRemoteAddr(context.Background(), "unknown")
	require.NoError(t, f.bus.Raise(ctx, events.KindUserDeleted, events.UsersDeleted{Users: []model.User{{ID: 11, Name: "Bob"}}}))

	require.Equal(t, 1, f.sink.Len())
	assert.Equal(t, "", f.sink.Entries()[0].PerformingIP)
}

func TestRouterIdentityEvents(t *testing.T) {
	t.Run("login success uses payload actor and address", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.withUser(model.User{ID: 11, Name: "Bob", Email: "bob@example.com"})

		// the principal in ctx must be ignored for identity events
		err := f.bus.Raise(asJane(context.Background()), events.KindLoginSuccess, events.IdentityEvent{
			PerformingUserID: 11,
			AffectedUserID:   11,
			IPAddress:        "unknown",
		})
		require.NoError(t, err)

		entries := f.sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, 11, entries[0].PerformingUserID)
		assert.Equal(t, "Bob <bob@example.com>", entries[0].PerformingDetails)
		assert.Equal(t, "unknown", entries[0].PerformingIP)
		assert.Equal(t, 0, entries[0].AffectedID)
		assert.Nil(t, entries[0].AffectedDetails)
		assert.Equal(t, TagLoginSuccess, entries[0].EventType)
	})

	t.Run("password reset names the affected user", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.withUser(model.User{ID: 7, Name: "Jane"})
		f.withUser(model.User{ID: 11, Name: "Bob", Email: "bob@example.com"})

		err := f.bus.Raise(context.Background(), events.KindPasswordReset, &events.IdentityEvent{
			PerformingUserID: 7,
			AffectedUserID:   11,
			IPAddress:        "10.1.1.1",
		})
		require.NoError(t, err)

		entries := f.sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, 11, entries[0].AffectedID)
		assert.Equal(t, `User "Bob" <bob@example.com>`, entries[0].Affected())
		assert.Equal(t, "password reset", entries[0].Comment)
	})

	for _, kind := range []events.Kind{
		events.KindLoginFailed,
		events.KindPasswordChanged,
		events.KindPasswordReset,
		events.KindForgotPasswordRequested,
	} {
		t.Run("negative performer skips "+kind.String(), func(t *testing.T) {
			sink := &MockSink{}
			f := newRouterFixture(t, sink)

			err := f.bus.Raise(context.Background(), kind, events.IdentityEvent{PerformingUserID: -1, AffectedUserID: 11})
			require.NoError(t, err)

			sink.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			f.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsSkipped.WithLabelValues(kind.String())))
		})
	}

	t.Run("negative performer on logout is looked up", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.users.On("GetUserByID", mock.Anything, -1).Return(nil, store.ErrNotFound)

		err := f.bus.Raise(context.Background(), events.KindLogoutSuccess, events.IdentityEvent{PerformingUserID: -1})
		assert.ErrorIs(t, err, ErrConsistencyViolation)
		assert.Zero(t, f.sink.Len())
	})

	t.Run("missing affected user", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.withUser(model.User{ID: 7, Name: "Jane"})
		f.users.On("GetUserByID", mock.Anything, 99).Return(nil, store.ErrNotFound)

		err := f.bus.Raise(context.Background(), events.KindPasswordChanged, events.IdentityEvent{PerformingUserID: 7, AffectedUserID: 99})
		assert.ErrorIs(t, err, ErrConsistencyViolation)
		assert.Zero(t, f.sink.Len())
	})
}

func TestRouterPermissionsAssigned(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.groups.On("GetUserGroupsByIDs", mock.Anything, []int{3, 3}).
		Return(map[int]model.UserGroup{3: editors}, nil).Once()
	f.entities.On("GetEntitiesByIDs", mock.Anything, []int{10, 11}).
		Return(map[int]model.Entity{10: {ID: 10, Name: "Home"}, 11: {ID: 11, Name: "About"}}, nil).Once()

	err := f.bus.Raise(context.Background(), events.KindUserGroupPermissionsAssigned, events.PermissionsAssigned{
		Permissions: []model.EntityPermission{
			{UserGroupID: 3, EntityID: 10, AssignedPermissions: []string{"C", "U"}},
			{UserGroupID: 3, EntityID: 11, AssignedPermissions: []string{"F"}},
		},
	})
	require.NoError(t, err)

	entries := f.sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, `assigning C, U on id:10 "Home"`, entries[0].Comment)
	assert.Equal(t, `assigning F on id:11 "About"`, entries[1].Comment)
	f.groups.AssertExpectations(t)
	f.entities.AssertExpectations(t)
}

func TestRouterPermissionsUnresolvableEntity(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.groups.On("GetUserGroupsByIDs", mock.Anything, mock.Anything).Return(map[int]model.UserGroup{3: editors}, nil)
	f.entities.On("GetEntitiesByIDs", mock.Anything, mock.Anything).Return(map[int]model.Entity{}, nil)

	err := f.bus.Raise(context.Background(), events.KindUserGroupPermissionsAssigned, events.PermissionsAssigned{
		Permissions: []model.EntityPermission{{UserGroupID: 3, EntityID: 10}},
	})
	assert.ErrorIs(t, err, ErrConsistencyViolation)
	assert.Zero(t, f.sink.Len())
}

func TestRouterRolesUseOneLookup(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.members.On("GetMembersByIDs", mock.Anything, []int{1, 2, 3}).
		Return(map[int]model.Member{1: {ID: 1, Name: "Ann"}, 3: {ID: 3, Name: "Cid"}}, nil).Once()

	err := f.bus.Raise(context.Background(), events.KindMemberRolesRemoved, events.RolesChanged{
		MemberIDs: []int{1, 2, 3},
		Roles:     []string{"Gold", "Beta"},
	})
	require.NoError(t, err)

	entries := f.sink.Entries()
	require.Len(t, entries, 3)
	seen := map[string]bool{}
	ids := map[int]bool{}
	for _, e := range entries {
		assert.Equal(t, "roles modified, removed Gold, Beta", e.Comment)
		seen[e.Affected()] = true
		ids[e.AffectedID] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, ids)
	f.members.AssertNumberOfCalls(t, "GetMembersByIDs", 1)
}

func TestRouterEmptyBatchesSkipLookups(t *testing.T) {
	f := newRouterFixture(t, nil)

	require.NoError(t, f.bus.Raise(context.Background(), events.KindMemberRolesAssigned, events.RolesChanged{Roles: []string{"Gold"}}))
	require.NoError(t, f.bus.Raise(context.Background(), events.KindUserGroupPermissionsAssigned, events.PermissionsAssigned{}))

	assert.Zero(t, f.sink.Len())
	f.members.AssertNotCalled(t, "GetMembersByIDs", mock.Anything, mock.Anything)
	f.groups.AssertNotCalled(t, "GetUserGroupsByIDs", mock.Anything, mock.Anything)
}

func TestRouterSinkFailure(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := &MockSink{}
	sink.On("Append", mock.Anything, mock.MatchedBy(func(e Entry) bool { return e.AffectedID == 11 })).Return(nil).Once()
	sink.On("Append", mock.Anything, mock.MatchedBy(func(e Entry) bool { return e.AffectedID == 12 })).Return(sinkErr).Once()

	f := newRouterFixture(t, sink)

	err := f.bus.Raise(context.Background(), events.KindUserDeleted, events.UsersDeleted{Users: []model.User{
		{ID: 11, Name: "Bob"},
		{ID: 12, Name: "Ann"},
		{ID: 13, Name: "Cid"},
	}})
	assert.ErrorIs(t, err, ErrSinkFailure)
	assert.ErrorIs(t, err, sinkErr)

	sink.AssertNumberOfCalls(t, "Append", 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EntriesAppended.WithLabelValues(string(TagUserDelete))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsFailed.WithLabelValues("user-deleted", "sink")))
}

func TestRouterUnexpectedPayload(t *testing.T) {
	f := newRouterFixture(t, nil)

	err := f.bus.Raise(context.Background(), events.KindUserSaved, events.MembersSaved{})
	assert.ErrorIs(t, err, ErrUnexpectedPayload)

	err = f.bus.Raise(context.Background(), events.KindLoginFailed, "nope")
	assert.ErrorIs(t, err, ErrUnexpectedPayload)
	assert.Zero(t, f.sink.Len())
}

func TestRouterRaise(t *testing.T) {
	router := NewRouter(Collaborators{}, NewMemorySink())

	assert.NoError(t, router.Raise(context.Background(), events.KindAccountLocked, events.IdentityEvent{}))
	assert.ErrorIs(t, router.Raise(context.Background(), events.Kind(999), nil), events.ErrUnknownKind)

	f := newRouterFixture(t, nil)
	f.members.On("GetMembersByIDs", mock.Anything, []int{4, 9}).
		Return(map[int]model.Member{4: {ID: 4, Name: "Dee"}}, nil).Once()

	err := f.router.Raise(context.Background(), events.KindMemberRolesAssigned, events.RolesChanged{
		MemberIDs: []int{4, 9},
		Roles:     []string{"Gold"},
	})
	require.NoError(t, err)

	entries := f.sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 4, entries[0].AffectedID)
	assert.Equal(t, 9, entries[1].AffectedID)
	assert.Equal(t, `Member 9 "(unknown)"`, entries[1].Affected())
}

func TestRouterConcurrentDispatch(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 4)
	sink := SinkFunc(func(ctx context.Context, e Entry) error {
		started <- struct{}{}
		<-block
		return nil
	})

	f := newRouterFixture(t, sink)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = f.bus.Raise(context.Background(), events.KindUserDeleted, events.UsersDeleted{Users: []model.User{{ID: id}}})
		}(i + 1)
	}

	for i := 0; i < 4; i++ {
		<-started
	}
	assert.Equal(t, int64(4), f.router.InFlight())
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.InFlight))

	close(block)
	wg.Wait()
	assert.Equal(t, int64(0), f.router.InFlight())
}
