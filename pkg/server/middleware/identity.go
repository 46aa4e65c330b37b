package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
)

// SystemSubject is the token subject used by services raising events on
// their own behalf. Requests carrying it run without a principal and are
// attributed to the system actor.
const SystemSubject = "system"

// UnknownAddress is stored when the caller address cannot be determined
const UnknownAddress = "unknown"

// IdentityAuthenticator is middleware that validates HS256 bearer tokens
// and records the principal and caller address on the request context.
type IdentityAuthenticator struct {
	secret  []byte
	trusted func(ip string) bool
}

// NewIdentityAuthenticator creates the middleware. trusted reports whether a
// peer is a proxy whose X-Forwarded-For header may be believed; nil trusts
// no one.
func NewIdentityAuthenticator(secret []byte, trusted func(ip string) bool) *IdentityAuthenticator {
	if trusted == nil {
		trusted = func(string) bool { return false }
	}
	return &IdentityAuthenticator{secret: secret, trusted: trusted}
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (a *IdentityAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization header"))
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(
			strings.TrimSpace(tokenStr),
			claims,
			func(*jwt.Token) (interface{}, error) { return a.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Token expired"))
			return
		case errors.Is(err, jwt.ErrTokenMalformed):
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization token"))
			return
		case err != nil:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Invalid token"))
			return
		}

		ctx := r.Context()
		if claims.Subject != SystemSubject {
			id, err := identity.FromClaims(claims)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("Invalid token subject"))
				return
			}
			ctx = identity.Set(ctx, id)
		}
		ctx = identity.SetRemoteAddr(ctx, ClientAddress(r, a.trusted))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientAddress returns the address of the client that made the request.
// X-Forwarded-For is consulted only when the direct peer is trusted; the
// chain is walked right to left and the first untrusted hop wins.
func ClientAddress(r *http.Request, trusted func(ip string) bool) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if peer == "" {
		return UnknownAddress
	}
	if trusted == nil || !trusted(peer) {
		return peer
	}

	forwarded := r.Header.Values("X-Forwarded-For")
	var hops []string
	for _, header := range forwarded {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	if len(hops) == 0 {
		return peer
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !trusted(hops[i]) {
			return hops[i]
		}
	}
	return hops[0]
}
