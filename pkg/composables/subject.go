package composables

import (
	"context"
	"errors"

	"github.com/talentpipe/crm/pkg/constants"
)

var ErrNoSubject = errors.New("no authenticated subject in context")

// WithSubject stores the token subject (user profile id) resolved by the auth
// middleware.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, constants.SubjectKey, subject)
}

func UseSubject(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(constants.SubjectKey).(string)
	if !ok || subject == "" {
		return "", ErrNoSubject
	}
	return subject, nil
}
