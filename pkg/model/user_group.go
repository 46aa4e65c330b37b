package model

import "github.com/lib/pq"

// UserGroup represents a group of back-office users and the sections and
// default permissions granted to it
type UserGroup struct {
	ID              int            `gorm:"column:id;primaryKey" json:"id" yaml:"id"`
	Name            string         `gorm:"column:name" json:"name" yaml:"name"`
	Alias           string         `gorm:"column:alias" json:"alias" yaml:"alias"`
	AllowedSections pq.StringArray `gorm:"column:allowed_sections;type:text[]" json:"allowed_sections" yaml:"allowed_sections"`
	Permissions     pq.StringArray `gorm:"column:permissions;type:text[]" json:"permissions" yaml:"permissions"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
