package middleware

import (
	"context"

	"github.com/formlab/formgen/internal/domain"
)

type contextKey string

const requestContextKey contextKey = "requestContext"

// RequestContext is the typed per-request state established by the guards:
// the session (nil for cookie-less requests), the authenticated user once
// RequireUser has run, and the resolved prototype once RequirePrototype or
// VerifyLive has run. Handlers read this instead of re-deriving state.
type RequestContext struct {
	Session   *domain.Session
	User      *domain.User
	Prototype *domain.Prototype
	// ViaPassword is set when live access was granted by a session-recorded
	// password rather than workspace or sharing-list rights.
	ViaPassword bool
}

// WithRequestContext returns ctx carrying rc
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// FromContext returns the request context established by the middleware.
// The zero value is returned for requests that never passed through the
// session middleware (tests, health checks).
func FromContext(ctx context.Context) *RequestContext {
	rc, ok := ctx.Value(requestContextKey).(*RequestContext)
	if !ok {
		return &RequestContext{}
	}
	return rc
}
