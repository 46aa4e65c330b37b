package model

// Member represents a front-end membership account
type Member struct {
	ID    int    `gorm:"column:id;primaryKey" json:"id" yaml:"id"`
	Name  string `gorm:"column:name" json:"name" yaml:"name"`
	Email string `gorm:"column:email" json:"email" yaml:"email"`
}

func (Member) TableName() string {
	return "members"
}
