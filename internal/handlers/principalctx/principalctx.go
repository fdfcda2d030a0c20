// Package principalctx carries the authenticated principal through the
// request context.
package principalctx

import (
	"context"

	"github.com/openfare/openfare/internal/models"
)

type contextKey struct{}

func New(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(models.Principal)
	return p, ok
}
