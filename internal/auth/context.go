package auth

import (
	"context"
	"slices"
)

type ctxKey string

const (
	learnerKey ctxKey = "learnerClaims"
)

// AnonymousLearner is the learner id used when the service runs without a
// database.
const AnonymousLearner = "00000000-0000-0000-0000-000000000000"

type Claims struct {
	Subject string
	Roles   []string
	JWTID   string
}

func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, learnerKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(learnerKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
