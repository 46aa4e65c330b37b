package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Ensure UserGroupsStore implements store.UserGroupsStore
var _ store.UserGroupsStore = (*UserGroupsStore)(nil)

// UserGroupsStore implements store.UserGroupsStore using GORM
type UserGroupsStore struct {
	db *gorm.DB
}

// NewUserGroupsStore creates a new UserGroupsStore
func NewUserGroupsStore(db *gorm.DB) *UserGroupsStore {
	return &UserGroupsStore{db: db}
}

// GetUserGroupByID retrieves a user group by id
func (s *UserGroupsStore) GetUserGroupByID(ctx context.Context, id int) (*model.UserGroup, error) {
	var group model.UserGroup
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user group %d: %w", id, err)
	}
	return &group, nil
}

// GetUserGroupsByIDs retrieves all user groups with the given ids
func (s *UserGroupsStore) GetUserGroupsByIDs(ctx context.Context, ids []int) (map[int]model.UserGroup, error) {
	result := make(map[int]model.UserGroup, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []model.UserGroup
	if err := s.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user groups: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}
