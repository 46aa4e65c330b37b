package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Store persists entries to the audit_entries table
type Store struct {
	db *sql.DB
}

// NewStore opens the audit database. Returns nil when databaseURL is empty
// (audit DB disabled).
func NewStore(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB creates a store with an existing database connection
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append inserts the entry
func (s *Store) Append(ctx context.Context, entry Entry) error {
	var affectedDetails sql.NullString
	if entry.AffectedDetails != nil {
		affectedDetails = sql.NullString{String: *entry.AffectedDetails, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (performing_user_id, performing_details, performing_ip, event_date_utc, affected_user_id, affected_details, event_type, event_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.PerformingUserID,
		entry.PerformingDetails,
		entry.PerformingIP,
		entry.Timestamp.UTC(),
		entry.AffectedID,
		affectedDetails,
		string(entry.EventType),
		entry.Comment,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}
