package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type principalContextKey struct{}

// WithPrincipal stores the authenticated principal on the context
func WithPrincipal(ctx context.Context, info auth.Info) context.Context {
	return context.WithValue(ctx, principalContextKey{}, info)
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request skipped authentication
func PrincipalFromContext(ctx context.Context) auth.Info {
	if val := ctx.Value(principalContextKey{}); val != nil {
		return val.(auth.Info)
	}
	return nil
}

// PrincipalObjectID returns the session user's ID as an ObjectID
func PrincipalObjectID(ctx context.Context) (primitive.ObjectID, error) {
	info := PrincipalFromContext(ctx)
	if info == nil {
		return primitive.NilObjectID, fmt.Errorf("no authenticated principal")
	}
	return primitive.ObjectIDFromHex(info.ID())
}

// PrincipalHasRole reports whether the principal carries the given role
func PrincipalHasRole(info auth.Info, role string) bool {
	if info == nil {
		return false
	}
	for _, g := range info.Groups() {
		if g == role {
			return true
		}
	}
	return false
}
