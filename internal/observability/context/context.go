// Package context carries request-scoped correlation values used by the
// logging and tracing middleware.
package context

import (
	"context"
	"strings"

	"github.com/smallbiznis/commission/internal/orgcontext"
)

type requestIDKey struct{}

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// OrgIDFromContext returns the organization id as a string, empty when unset.
func OrgIDFromContext(ctx context.Context) string {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return ""
	}
	return orgID.String()
}

// ActorIDFromContext returns the acting user id as a string, empty when unset.
func ActorIDFromContext(ctx context.Context) string {
	actorID, ok := orgcontext.ActorIDFromContext(ctx)
	if !ok {
		return ""
	}
	return actorID.String()
}
