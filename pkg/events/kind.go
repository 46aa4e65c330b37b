package events

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform kebab -json -yaml -output kind.gen.go

// Kind identifies a lifecycle event raised by the identity, user and member
// administration services.
type Kind int

const (
	KindLoginSuccess Kind = iota
	KindLoginFailed
	KindLogoutSuccess
	KindPasswordChanged
	KindPasswordReset
	KindForgotPasswordRequested
	KindForgotPasswordChanged
	KindAccountLocked
	KindAccountUnlocked
	KindLoginRequiresVerification
	KindResetAccessFailedCount
	KindUserSaved
	KindUserDeleted
	KindUserGroupSaved
	KindUserGroupPermissionsAssigned
	KindMemberSaved
	KindMemberDeleted
	KindMemberRolesAssigned
	KindMemberRolesRemoved
)

// Reserved reports whether the kind is recognised but deliberately not
// audited. Reserved kinds can still be subscribed to and raised.
func (k Kind) Reserved() bool {
	switch k {
	case KindAccountLocked, KindAccountUnlocked, KindLoginRequiresVerification, KindResetAccessFailedCount:
		return true
	default:
		return false
	}
}

// IsIdentity reports whether the kind is raised by the authentication
// pipeline and carries its own actor and address.
func (k Kind) IsIdentity() bool {
	return k >= KindLoginSuccess && k <= KindResetAccessFailedCount
}
