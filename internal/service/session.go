package service

import "github.com/google/uuid"

// SessionResolver decides which session token an operation runs under.
// It never touches storage; binding a token to a cart is the cart service's job.
type SessionResolver struct {
	newToken func() string
}

// NewSessionResolver returns a resolver that mints random UUID tokens
func NewSessionResolver() *SessionResolver {
	return &SessionResolver{newToken: uuid.NewString}
}

// Resolve returns the caller's token verbatim when present, otherwise a new
// one. minted reports whether the token was generated here.
func (r *SessionResolver) Resolve(token string) (resolved string, minted bool) {
	if token != "" {
		return token, false
	}
	return r.newToken(), true
}
