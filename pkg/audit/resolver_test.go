package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

func TestResolveActor(t *testing.T) {
	t.Run("no principal resolves to SYSTEM", func(t *testing.T) {
		users := &MockUsersStore{}
		r := NewResolver(users)

		actor, err := r.ResolveActor(context.Background())
		require.NoError(t, err)
		assert.Equal(t, SystemActor, actor)
		assert.Equal(t, "SYSTEM", actor.Details())
		users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("principal is looked up", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("GetUserByID", mock.Anything, 7).
			Return(&model.User{ID: 7, Name: "Jane", Email: "jane@example.com"}, nil)
		r := NewResolver(users)

		ctx := identity.Set(context.Background(), identity.ForUser(7))
		actor, err := r.ResolveActor(ctx)
		require.NoError(t, err)
		assert.Equal(t, Actor{ID: 7, Name: "Jane", Email: "jane@example.com"}, actor)
		assert.Equal(t, "Jane <jane@example.com>", actor.Details())
		users.AssertExpectations(t)
	})

	t.Run("missing principal user is a consistency violation", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("GetUserByID", mock.Anything, 42).Return(nil, store.ErrNotFound)
		r := NewResolver(users)

		ctx := identity.Set(context.Background(), identity.ForUser(42))
		_, err := r.ResolveActor(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConsistencyViolation)
		assert.Contains(t, err.Error(), "42")
	})

	t.Run("store failure is passed through", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		users := &MockUsersStore{}
		users.On("GetUserByID", mock.Anything, 7).Return(nil, dbErr)
		r := NewResolver(users)

		ctx := identity.Set(context.Background(), identity.ForUser(7))
		_, err := r.ResolveActor(ctx)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrConsistencyViolation)
	})
}

func TestResolveCallerAddress(t *testing.T) {
	r := NewResolver(&MockUsersStore{})

	tests := []struct {
		addr string
		want string
	}{
		{addr: "10.0.0.1", want: "10.0.0.1"},
		{addr: "", want: ""},
		{addr: "unknown", want: ""},
		{addr: "Unknown", want: ""},
		{addr: "UNKNOWN:0", want: ""},
		{addr: "unknown-proxy", want: ""},
		{addr: "2001:db8::1", want: "2001:db8::1"},
		{addr: "not unknown", want: "not unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			ctx := identity.SetRemoteAddr(context.Background(), tt.addr)
			assert.Equal(t, tt.want, r.ResolveCallerAddress(ctx))
			assert.Equal(t, tt.want, NormalizeAddress(tt.addr))
		})
	}
}

func TestActorDetails(t *testing.T) {
	assert.Equal(t, "Jane", Actor{ID: 1, Name: "Jane", Email: "  "}.Details())
	assert.Equal(t, "Jane <j@x.io>", Actor{ID: 1, Name: "Jane", Email: "j@x.io"}.Details())
}
