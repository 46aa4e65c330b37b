package model

import "time"

// AuditEntry is a persisted audit trail row
type AuditEntry struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PerformingUserID  int       `gorm:"column:performing_user_id;not null"`
	PerformingDetails string    `gorm:"column:performing_details;not null"`
	PerformingIP      string    `gorm:"column:performing_ip;not null"`
	EventDateUTC      time.Time `gorm:"column:event_date_utc;not null"`
	AffectedUserID    int       `gorm:"column:affected_user_id;not null"`
	AffectedDetails   *string   `gorm:"column:affected_details"`
	EventType         string    `gorm:"column:event_type;not null"`
	EventDetails      string    `gorm:"column:event_details;not null"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
