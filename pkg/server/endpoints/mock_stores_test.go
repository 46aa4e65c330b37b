package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// MockRaiser implements events.Raiser for testing using testify/mock
type MockRaiser struct {
	mock.Mock
}

func (m *MockRaiser) Raise(ctx context.Context, kind events.Kind, payload any) error {
	args := m.Called(ctx, kind, payload)
	return args.Error(0)
}

// MockEntriesStore implements store.EntriesStore for testing using testify/mock
type MockEntriesStore struct {
	mock.Mock
}

func (m *MockEntriesStore) ListEntries(ctx context.Context, filter store.EntryFilter) ([]model.AuditEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

func (m *MockEntriesStore) CountEntries(ctx context.Context, filter store.EntryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
