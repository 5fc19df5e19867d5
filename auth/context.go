package auth

import (
	"context"

	"github.com/nasahack25/airq/domain"
)

const (
	principalKey privateKey = "principal"
)

type privateKey string

// SetPrincipal returns a child context carrying the authenticated principal.
// Only the auth middleware should ever call this.
func SetPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal returns the authenticated principal stored in the context,
// or the zero Principal if the request is anonymous.
func GetPrincipal(ctx context.Context) domain.Principal {
	if temp := ctx.Value(principalKey); temp != nil {
		if principal, ok := temp.(domain.Principal); ok {
			return principal
		}
	}
	return domain.Principal{}
}
