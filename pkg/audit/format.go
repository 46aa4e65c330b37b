package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

const (
	nothingChanged = "(nothing)"
	unknownName    = "(unknown)"
)

// ActorContext is the performing context shared by every entry built for
// one event.
type ActorContext struct {
	Actor Actor
	IP    string
	At    time.Time
}

func (ac ActorContext) entry(affectedID int, affected *string, tag Tag, comment string) Entry {
	return Entry{
		PerformingUserID:  ac.Actor.ID,
		PerformingDetails: ac.Actor.Details(),
		PerformingIP:      ac.IP,
		Timestamp:         ac.At,
		AffectedID:        affectedID,
		AffectedDetails:   affected,
		EventType:         tag,
		Comment:           comment,
	}
}

type identityRule struct {
	tag     Tag
	comment string
	// skipNegative leaves occurrences with a negative performing id unaudited
	skipNegative bool
	// subject entries name the affected user
	subject bool
}

var identityRules = map[events.Kind]identityRule{
	events.KindLoginSuccess:            {tag: TagLoginSuccess, comment: "login success"},
	events.KindLoginFailed:             {tag: TagLoginFailed, comment: "login failed", skipNegative: true},
	events.KindLogoutSuccess:           {tag: TagLogoutSuccess, comment: "logout success"},
	events.KindPasswordChanged:         {tag: TagPasswordChange, comment: "password change", skipNegative: true, subject: true},
	events.KindPasswordReset:           {tag: TagPasswordReset, comment: "password reset", skipNegative: true, subject: true},
	events.KindForgotPasswordRequested: {tag: TagForgotPasswordRequest, comment: "password forgot/request", skipNegative: true, subject: true},
	events.KindForgotPasswordChanged:   {tag: TagForgotPasswordChange, comment: "password forgot/change", subject: true},
}

// FormatIdentityEvent builds the entry for an authentication or password
// event. affected is required for password events and ignored for sign-in
// events, which have no subject.
func FormatIdentityEvent(ac ActorContext, kind events.Kind, affected *model.User) (Entry, error) {
	rule, ok := identityRules[kind]
	if !ok {
		return Entry{}, fmt.Errorf("%s is not an audited identity event", kind)
	}
	if !rule.subject {
		return ac.entry(0, nil, rule.tag, rule.comment), nil
	}
	if affected == nil {
		return Entry{}, fmt.Errorf("%w: %s has no affected user", ErrConsistencyViolation, kind)
	}
	return ac.entry(affected.ID, userDetails(*affected), rule.tag, rule.comment), nil
}

// FormatUsersSaved builds one entry per saved user
func FormatUsersSaved(ac ActorContext, ev events.UsersSaved) []Entry {
	entries := make([]Entry, 0, len(ev.Users))
	for _, saved := range ev.Users {
		changed := normalizeChanged(saved.Changed)
		comment := "updating " + summarize(changed)
		if hasChanged(changed, events.FieldGroups) {
			aliases := make([]string, 0, len(saved.User.Groups))
			for _, g := range saved.User.Groups {
				aliases = append(aliases, g.Alias)
			}
			comment += "; groups assigned: " + strings.Join(aliases, ", ")
		}
		entries = append(entries, ac.entry(saved.User.ID, userDetails(saved.User), TagUserSave, comment))
	}
	return entries
}

// FormatUsersDeleted builds one entry per deleted user
func FormatUsersDeleted(ac ActorContext, ev events.UsersDeleted) []Entry {
	entries := make([]Entry, 0, len(ev.Users))
	for _, u := range ev.Users {
		entries = append(entries, ac.entry(u.ID, userDetails(u), TagUserDelete, "delete user"))
	}
	return entries
}

// FormatUserGroupsSaved builds one entry per saved group. Changed sections
// and permissions are rendered with their new values.
func FormatUserGroupsSaved(ac ActorContext, ev events.UserGroupsSaved) []Entry {
	entries := make([]Entry, 0, len(ev.Groups))
	for _, saved := range ev.Groups {
		changed := normalizeChanged(saved.Changed)
		parts := []string{"updating " + summarize(changed)}
		if hasChanged(changed, events.FieldAllowedSections) {
			parts = append(parts, "assigned sections: "+strings.Join(saved.Group.AllowedSections, ", "))
		}
		if hasChanged(changed, events.FieldPermissions) {
			parts = append(parts, "assigned perms: "+strings.Join(saved.Group.Permissions, ", "))
		}
		entries = append(entries, ac.entry(saved.Group.ID, groupDetails(saved.Group), TagUserGroupSave, strings.Join(parts, "; ")))
	}
	return entries
}

// FormatPermissionsAssigned builds one entry per assigned permission set.
// groups and entities must hold every referenced id; a missing one is a
// consistency violation and no entries are returned.
func FormatPermissionsAssigned(ac ActorContext, ev events.PermissionsAssigned, groups map[int]model.UserGroup, entities map[int]model.Entity) ([]Entry, error) {
	entries := make([]Entry, 0, len(ev.Permissions))
	for _, perm := range ev.Permissions {
		group, ok := groups[perm.UserGroupID]
		if !ok {
			return nil, fmt.Errorf("%w: no user group with id %d", ErrConsistencyViolation, perm.UserGroupID)
		}
		entity, ok := entities[perm.EntityID]
		if !ok {
			return nil, fmt.Errorf("%w: no entity with id %d", ErrConsistencyViolation, perm.EntityID)
		}

		assigned := nothingChanged
		if len(perm.AssignedPermissions) > 0 {
			assigned = strings.Join(perm.AssignedPermissions, ", ")
		}
		comment := fmt.Sprintf("assigning %s on id:%d %q", assigned, entity.ID, entity.Name)
		entries = append(entries, ac.entry(group.ID, groupDetails(group), TagUserGroupPermissions, comment))
	}
	return entries, nil
}

// FormatMembersSaved builds one entry per saved member
func FormatMembersSaved(ac ActorContext, ev events.MembersSaved) []Entry {
	entries := make([]Entry, 0, len(ev.Members))
	for _, saved := range ev.Members {
		comment := "updating " + summarize(normalizeChanged(saved.Changed))
		entries = append(entries, ac.entry(saved.Member.ID, memberDetails(saved.Member), TagMemberSave, comment))
	}
	return entries
}

// FormatMembersDeleted builds one entry per deleted member
func FormatMembersDeleted(ac ActorContext, ev events.MembersDeleted) []Entry {
	entries := make([]Entry, 0, len(ev.Members))
	for _, m := range ev.Members {
		comment := strings.TrimSpace(fmt.Sprintf("delete member id:%d %q %s", m.ID, m.Name, formatEmail(m.Email)))
		entries = append(entries, ac.entry(m.ID, memberDetails(m), TagMemberDelete, comment))
	}
	return entries
}

// FormatRolesChanged builds one entry per member id in payload order, each
// listing the full role set. Members missing from members render as
// "(unknown)".
func FormatRolesChanged(ac ActorContext, kind events.Kind, ev events.RolesChanged, members map[int]model.Member) ([]Entry, error) {
	var tag Tag
	var verb string
	switch kind {
	case events.KindMemberRolesAssigned:
		tag, verb = TagMemberRolesAssigned, "assigned"
	case events.KindMemberRolesRemoved:
		tag, verb = TagMemberRolesRemoved, "removed"
	default:
		return nil, fmt.Errorf("%s is not a role event", kind)
	}

	comment := fmt.Sprintf("roles modified, %s %s", verb, strings.Join(ev.Roles, ", "))
	entries := make([]Entry, 0, len(ev.MemberIDs))
	for _, id := range ev.MemberIDs {
		m, ok := members[id]
		if !ok {
			m = model.Member{ID: id, Name: unknownName}
		}
		entries = append(entries, ac.entry(id, memberDetails(m), tag, comment))
	}
	return entries, nil
}

// formatEmail renders a non-blank email as "<address>"
func formatEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return "<" + email + ">"
}

func userDetails(u model.User) *string {
	s := strings.TrimSpace(fmt.Sprintf("User %q %s", u.Name, formatEmail(u.Email)))
	return &s
}

func memberDetails(m model.Member) *string {
	s := strings.TrimSpace(fmt.Sprintf("Member %d %q %s", m.ID, m.Name, formatEmail(m.Email)))
	return &s
}

func groupDetails(g model.UserGroup) *string {
	s := fmt.Sprintf("User Group %d %q (%s)", g.ID, g.Name, g.Alias)
	return &s
}

func summarize(changed []string) string {
	if len(changed) == 0 {
		return nothingChanged
	}
	return strings.Join(changed, ", ")
}

// normalizeChanged drops blank and repeated field names, keeping first-seen order
func normalizeChanged(changed []string) []string {
	out := make([]string, 0, len(changed))
	for _, field := range changed {
		field = strings.TrimSpace(field)
		if field == "" || hasChanged(out, field) {
			continue
		}
		out = append(out, field)
	}
	return out
}

func hasChanged(changed []string, field string) bool {
	for _, c := range changed {
		if strings.EqualFold(c, field) {
			return true
		}
	}
	return false
}
