package identity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"

	// RemoteAddrKey is the context key for the caller's network address.
	RemoteAddrKey ContextKey = "remote_addr"
)

// Identity represents the authenticated back-office principal for a request.
type Identity struct {
	// Token claims
	UserID    int
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// FromClaims creates an Identity from verified token claims. The subject
// must be the numeric id of a back-office user.
func FromClaims(claims *jwt.RegisteredClaims) (*Identity, error) {
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject %q is not a user id", claims.Subject)
	}

	id := &Identity{
		UserID:  userID,
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// ForUser creates an Identity for a known user id, for callers that
// authenticate out of band (CLI replay, spool files).
func ForUser(userID int) *Identity {
	return &Identity{UserID: userID, Subject: strconv.Itoa(userID)}
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok && id != nil
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// RemoteAddr returns the caller address stored in context, or "" if none.
func RemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(RemoteAddrKey).(string)
	return addr
}

// SetRemoteAddr stores the caller address in context.
func SetRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, RemoteAddrKey, addr)
}
