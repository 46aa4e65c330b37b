package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Ensure MembersStore implements store.MembersStore
var _ store.MembersStore = (*MembersStore)(nil)

// MembersStore implements store.MembersStore using GORM
type MembersStore struct {
	db *gorm.DB
}

// NewMembersStore creates a new MembersStore
func NewMembersStore(db *gorm.DB) *MembersStore {
	return &MembersStore{db: db}
}

// GetMembersByIDs retrieves all members with the given ids
func (s *MembersStore) GetMembersByIDs(ctx context.Context, ids []int) (map[int]model.Member, error) {
	result := make(map[int]model.Member, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []model.Member
	if err := s.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
