package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tag is the stable category key stored with every entry. Tags form a
// closed vocabulary; adding one bumps TagVocabularyVersion.
type Tag string

// TagVocabularyVersion is the version of the tag vocabulary below.
const TagVocabularyVersion = 1

const (
	TagLoginSuccess          Tag = "umbraco/user/sign-in/login"
	TagLoginFailed           Tag = "umbraco/user/sign-in/failed"
	TagLogoutSuccess         Tag = "umbraco/user/sign-in/logout"
	TagPasswordChange        Tag = "umbraco/user/password/change"
	TagPasswordReset         Tag = "umbraco/user/password/reset"
	TagForgotPasswordRequest Tag = "umbraco/user/password/forgot/request"
	TagForgotPasswordChange  Tag = "umbraco/user/password/forgot/change"
	TagUserSave              Tag = "umbraco/user/save"
	TagUserDelete            Tag = "umbraco/user/delete"
	TagUserGroupSave         Tag = "umbraco/user-group/save"
	TagUserGroupPermissions  Tag = "umbraco/user-group/permissions-change"
	TagMemberSave            Tag = "umbraco/member/save"
	TagMemberDelete          Tag = "umbraco/member/delete"
	TagMemberRolesAssigned   Tag = "umbraco/member/roles/assigned"
	TagMemberRolesRemoved    Tag = "umbraco/member/roles/removed"
)

const tagNamespace = "umbraco/"

var tags = []Tag{
	TagLoginSuccess,
	TagLoginFailed,
	TagLogoutSuccess,
	TagPasswordChange,
	TagPasswordReset,
	TagForgotPasswordRequest,
	TagForgotPasswordChange,
	TagUserSave,
	TagUserDelete,
	TagUserGroupSave,
	TagUserGroupPermissions,
	TagMemberSave,
	TagMemberDelete,
	TagMemberRolesAssigned,
	TagMemberRolesRemoved,
}

// Tags returns the full tag vocabulary
func Tags() []Tag {
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// Valid reports whether t belongs to the vocabulary
func (t Tag) Valid() bool {
	for _, known := range tags {
		if t == known {
			return true
		}
	}
	return false
}

// Entry is one audit trail record. Entries are built by the formatters,
// validated, and handed to a Sink once.
type Entry struct {
	PerformingUserID  int
	PerformingDetails string
	PerformingIP      string
	Timestamp         time.Time
	AffectedID        int
	AffectedDetails   *string
	EventType         Tag
	Comment           string
}

// Validate checks the invariants every written entry must hold
func (e Entry) Validate() error {
	if e.PerformingUserID < 0 {
		return fmt.Errorf("%w: negative performing user id %d", ErrInvalidEntry, e.PerformingUserID)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEntry)
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEntry, e.EventType)
	}
	return nil
}

// Affected returns the affected details, or "" when the entry has no subject
func (e Entry) Affected() string {
	if e.AffectedDetails == nil {
		return ""
	}
	return *e.AffectedDetails
}

// MessageID returns the syslog MSGID for the entry, e.g. "user-password-reset"
func (e Entry) MessageID() string {
	return strings.ReplaceAll(strings.TrimPrefix(string(e.EventType), tagNamespace), "/", "-")
}

// Message returns the human-readable syslog message
func (e Entry) Message() string {
	if e.AffectedDetails == nil {
		return fmt.Sprintf("%s: %s", e.PerformingDetails, e.Comment)
	}
	return fmt.Sprintf("%s on %s: %s", e.PerformingDetails, *e.AffectedDetails, e.Comment)
}

// Severity returns the syslog severity for the entry
func (e Entry) Severity() Severity {
	switch e.EventType {
	case TagLoginFailed:
		return SeverityWarning
	case TagUserDelete, TagMemberDelete, TagPasswordReset, TagUserGroupPermissions:
		return SeverityNotice
	default:
		return SeverityInfo
	}
}

// Facility returns the syslog facility for the entry
func (e Entry) Facility() int {
	return FacilityAuthPriv
}

// StructuredData returns RFC5424 structured data for the entry
func (e Entry) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user":    strconv.Itoa(e.PerformingUserID),
			"details": e.PerformingDetails,
		},
		SDIDClient: {
			"ip": e.PerformingIP,
		},
		SDIDAction: {
			"operation": string(e.EventType),
		},
	}
	if e.AffectedDetails != nil {
		sd[SDIDSubject] = map[string]string{
			"id":      strconv.Itoa(e.AffectedID),
			"details": *e.AffectedDetails,
		}
	}
	return sd
}
