package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Ensure EntriesStore implements store.EntriesStore
var _ store.EntriesStore = (*EntriesStore)(nil)

// EntriesStore implements store.EntriesStore using GORM
type EntriesStore struct {
	db *gorm.DB
}

// NewEntriesStore creates a new EntriesStore
func NewEntriesStore(db *gorm.DB) *EntriesStore {
	return &EntriesStore{db: db}
}

// ListEntries returns audit entries newest first
func (s *EntriesStore) ListEntries(ctx context.Context, filter store.EntryFilter) ([]model.AuditEntry, error) {
	query := s.filtered(ctx, filter).Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []model.AuditEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountEntries counts audit entries matching the filter
func (s *EntriesStore) CountEntries(ctx context.Context, filter store.EntryFilter) (int64, error) {
	var count int64
	err := s.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (s *EntriesStore) filtered(ctx context.Context, filter store.EntryFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&model.AuditEntry{})
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.PerformingUserID != nil {
		query = query.Where("performing_user_id = ?", *filter.PerformingUserID)
	}
	return query
}
