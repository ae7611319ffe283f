package auth

import "context"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID     string
	Email      string
	Username   string
	LocationID string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
