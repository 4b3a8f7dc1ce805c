package gateway

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a request has no user credential.
var ErrUnauthenticated = errors.New("gateway: user not authenticated")

type contextKey string

const credentialsKey contextKey = "credentials"

// Credentials identify the user on whose behalf backend calls are made.
type Credentials struct {
	UserEmail string
}

// WithCredentials returns a context carrying c.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey, c)
}

// CredentialsFrom extracts credentials from ctx. The second value is false
// when none are set or the email is empty.
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKey).(Credentials)
	if !ok || c.UserEmail == "" {
		return Credentials{}, false
	}
	return c, true
}
