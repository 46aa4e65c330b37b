package model

// Entity is any content node that permissions can be assigned on
type Entity struct {
	ID   int    `gorm:"column:id;primaryKey" json:"id" yaml:"id"`
	Name string `gorm:"column:name" json:"name" yaml:"name"`
}

func (Entity) TableName() string {
	return "entities"
}

// EntityPermission is a set of permission letters assigned to a user group
// on a single entity
type EntityPermission struct {
	UserGroupID         int      `json:"user_group_id" yaml:"user_group_id"`
	EntityID            int      `json:"entity_id" yaml:"entity_id"`
	AssignedPermissions []string `json:"assigned_permissions" yaml:"assigned_permissions"`
}
