package audit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

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

// MockMembersStore implements store.MembersStore for testing using testify/mock
type MockMembersStore struct {
	mock.Mock
}

func (m *MockMembersStore) GetMembersByIDs(ctx context.Context, ids []int) (map[int]model.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.Member), args.Error(1)
}

// MockUserGroupsStore implements store.UserGroupsStore for testing using testify/mock
type MockUserGroupsStore struct {
	mock.Mock
}

func (m *MockUserGroupsStore) GetUserGroupByID(ctx context.Context, id int) (*model.UserGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserGroup), args.Error(1)
}

func (m *MockUserGroupsStore) GetUserGroupsByIDs(ctx context.Context, ids []int) (map[int]model.UserGroup, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.UserGroup), args.Error(1)
}

// MockEntitiesStore implements store.EntitiesStore for testing using testify/mock
type MockEntitiesStore struct {
	mock.Mock
}

func (m *MockEntitiesStore) GetEntitiesByIDs(ctx context.Context, ids []int) (map[int]model.Entity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.Entity), args.Error(1)
}

// MockSink implements Sink for testing using testify/mock
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Append(ctx context.Context, entry Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
