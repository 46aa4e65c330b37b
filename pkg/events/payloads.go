package events

import (
	"fmt"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// Changed-field names with dedicated rendering in audit comments.
const (
	FieldGroups          = "Groups"
	FieldAllowedSections = "AllowedSections"
	FieldPermissions     = "Permissions"
)

// IdentityEvent is raised by the authentication pipeline, outside of any
// back-office request, so it names its actor and address explicitly.
type IdentityEvent struct {
	PerformingUserID int    `json:"performing_user_id" yaml:"performing_user_id"`
	AffectedUserID   int    `json:"affected_user_id" yaml:"affected_user_id"`
	IPAddress        string `json:"ip_address" yaml:"ip_address"`
}

// SavedUser is a saved user together with the fields changed since it was loaded
type SavedUser struct {
	User    model.User `json:"user" yaml:"user"`
	Changed []string   `json:"changed" yaml:"changed"`
}

// UsersSaved is raised after one or more users are saved
type UsersSaved struct {
	Users []SavedUser `json:"users" yaml:"users"`
}

// UsersDeleted is raised after one or more users are deleted
type UsersDeleted struct {
	Users []model.User `json:"users" yaml:"users"`
}

// SavedUserGroup is a saved user group together with its changed fields
type SavedUserGroup struct {
	Group   model.UserGroup `json:"group" yaml:"group"`
	Changed []string        `json:"changed" yaml:"changed"`
}

// UserGroupsSaved is raised after one or more user groups are saved
type UserGroupsSaved struct {
	Groups []SavedUserGroup `json:"groups" yaml:"groups"`
}

// PermissionsAssigned is raised after entity permissions are assigned to user groups
type PermissionsAssigned struct {
	Permissions []model.EntityPermission `json:"permissions" yaml:"permissions"`
}

// SavedMember is a saved member together with its changed fields
type SavedMember struct {
	Member  model.Member `json:"member" yaml:"member"`
	Changed []string     `json:"changed" yaml:"changed"`
}

// MembersSaved is raised after one or more members are saved
type MembersSaved struct {
	Members []SavedMember `json:"members" yaml:"members"`
}

// MembersDeleted is raised after one or more members are deleted
type MembersDeleted struct {
	Members []model.Member `json:"members" yaml:"members"`
}

// RolesChanged is raised when roles are assigned to or removed from members
type RolesChanged struct {
	MemberIDs []int    `json:"member_ids" yaml:"member_ids"`
	Roles     []string `json:"roles" yaml:"roles"`
}

// NewPayload returns a pointer to a zero payload of the type raised for kind,
// ready to be decoded into.
func NewPayload(kind Kind) (any, error) {
	if kind.IsIdentity() {
		return &IdentityEvent{}, nil
	}
	switch kind {
	case KindUserSaved:
		return &UsersSaved{}, nil
	case KindUserDeleted:
		return &UsersDeleted{}, nil
	case KindUserGroupSaved:
		return &UserGroupsSaved{}, nil
	case KindUserGroupPermissionsAssigned:
		return &PermissionsAssigned{}, nil
	case KindMemberSaved:
		return &MembersSaved{}, nil
	case KindMemberDeleted:
		return &MembersDeleted{}, nil
	case KindMemberRolesAssigned, KindMemberRolesRemoved:
		return &RolesChanged{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// PayloadAs returns payload as a T, accepting either a T or a *T.
func PayloadAs[T any](payload any) (T, bool) {
	switch p := payload.(type) {
	case T:
		return p, true
	case *T:
		if p != nil {
			return *p, true
		}
	}
	var zero T
	return zero, false
}
