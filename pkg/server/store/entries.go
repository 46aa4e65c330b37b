package store

import (
	"context"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// EntryFilter narrows an audit trail listing
type EntryFilter struct {
	EventType        string
	PerformingUserID *int
	Limit            int
	Offset           int
}

// EntriesStore abstracts reading the audit trail back
type EntriesStore interface {
	// ListEntries returns entries newest first
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.AuditEntry, error)

	// CountEntries counts entries matching the filter, ignoring limit and offset
	CountEntries(ctx context.Context, filter EntryFilter) (int64, error)
}
