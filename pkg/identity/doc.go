// Package identity carries the acting principal and the caller's network
// address through a context.Context.
//
// The request layer populates both once per request (see the server
// middleware package); the audit pipeline only reads them.
//
// # Basic Usage
//
//	// Store in request context
//	ctx = identity.Set(ctx, identity.ForUser(7))
//	ctx = identity.SetRemoteAddr(ctx, "10.0.0.4")
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//	addr := identity.RemoteAddr(ctx)
//
// A context without an Identity is treated as a system action.
package identity
