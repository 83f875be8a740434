// Package ctxkeys provides typed accessors for request-scoped values.
// Unexported key types prevent collisions with other packages.
package ctxkeys

import (
	"context"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
)

type userKey struct{}
type profileKey struct{}
type subscriptionKey struct{}
type configKey struct{}
type csrfTokenKey struct{}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func User(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}

func WithProfile(ctx context.Context, p *model.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

func Profile(ctx context.Context) *model.Profile {
	p, _ := ctx.Value(profileKey{}).(*model.Profile)
	return p
}

func WithSubscription(ctx context.Context, s *model.Subscription) context.Context {
	return context.WithValue(ctx, subscriptionKey{}, s)
}

func Subscription(ctx context.Context) *model.Subscription {
	s, _ := ctx.Value(subscriptionKey{}).(*model.Subscription)
	return s
}

func WithConfig(ctx context.Context, c *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, c)
}

func Config(ctx context.Context) *config.Config {
	c, _ := ctx.Value(configKey{}).(*config.Config)
	return c
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfTokenKey{}).(string)
	return t
}
