package server

import (
	"context"
	"net/http"
)

// Identity is the signed-in user as reported by the identity provider.
type Identity struct {
	UserID string
	Email  string
}

// IdentityProvider resolves the signed-in user of a request.
//
// ok is false for anonymous requests. Authentication itself happens upstream; providers only read its result.
type IdentityProvider interface {
	Identify(r *http.Request) (Identity, bool)
}

// HeaderIdentity reads the identity an authenticating reverse proxy forwards in request headers.
type HeaderIdentity struct {
	UserHeader  string
	EmailHeader string
}

const (
	DefaultUserHeader  = "X-Forwarded-User"
	DefaultEmailHeader = "X-Forwarded-Email"
)

// NewHeaderIdentity creates a [HeaderIdentity], substituting the X-Forwarded-* defaults for empty header names.
func NewHeaderIdentity(userHeader, emailHeader string) *HeaderIdentity {
	if userHeader == "" {
		userHeader = DefaultUserHeader
	}
	if emailHeader == "" {
		emailHeader = DefaultEmailHeader
	}
	return &HeaderIdentity{UserHeader: userHeader, EmailHeader: emailHeader}
}

// Identify implements [IdentityProvider].
func (h *HeaderIdentity) Identify(r *http.Request) (Identity, bool) {
	id := Identity{UserID: r.Header.Get(h.UserHeader), Email: r.Header.Get(h.EmailHeader)}
	if id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx by [IdentityMiddleware].
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
