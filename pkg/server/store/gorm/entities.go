package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Ensure EntitiesStore implements store.EntitiesStore
var _ store.EntitiesStore = (*EntitiesStore)(nil)

// EntitiesStore implements store.EntitiesStore using GORM
type EntitiesStore struct {
	db *gorm.DB
}

// NewEntitiesStore creates a new EntitiesStore
func NewEntitiesStore(db *gorm.DB) *EntitiesStore {
	return &EntitiesStore{db: db}
}

// GetEntitiesByIDs retrieves all entities with the given ids
func (s *EntitiesStore) GetEntitiesByIDs(ctx context.Context, ids []int) (map[int]model.Entity, error) {
	result := make(map[int]model.Entity, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []model.Entity
	if err := s.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}
