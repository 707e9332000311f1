package ctxkeys

import (
	"context"

	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey   contextKey = "user"
	ConfigKey contextKey = "config"
)

// User returns the authenticated user, or nil on public routes.
func User(ctx context.Context) *model.PublicUser {
	user, _ := ctx.Value(UserKey).(*model.PublicUser)
	return user
}

func WithUser(ctx context.Context, user *model.PublicUser) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}
