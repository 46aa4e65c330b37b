package store

import (
	"context"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// UserGroupsStore abstracts user group lookups
type UserGroupsStore interface {
	// GetUserGroupByID retrieves a user group by id.
	// Returns ErrNotFound if the group doesn't exist.
	GetUserGroupByID(ctx context.Context, id int) (*model.UserGroup, error)

	// GetUserGroupsByIDs retrieves all groups with the given ids in one
	// round trip. Ids with no group are absent from the result.
	GetUserGroupsByIDs(ctx context.Context, ids []int) (map[int]model.UserGroup, error)
}
