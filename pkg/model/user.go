package model

// User represents a back-office user account
type User struct {
	ID    int    `gorm:"column:id;primaryKey" json:"id" yaml:"id"`
	Name  string `gorm:"column:name" json:"name" yaml:"name"`
	Email string `gorm:"column:email" json:"email" yaml:"email"`

	// Groups is carried on save events only; lookups do not load it.
	Groups []UserGroup `gorm:"-" json:"groups,omitempty" yaml:"groups,omitempty"`
}

func (User) TableName() string {
	return "users"
}
