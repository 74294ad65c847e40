// Package users resolves usernames to display identities for comment
// attribution.
package users

import "context"

// Identity is a resolved display identity.
type Identity struct {
	Name      string
	AvatarURL string
}

// Lookup resolves a username to an identity. Implementations return a
// USER_LOOKUP error for unknown users and transport failures alike.
type Lookup interface {
	Lookup(ctx context.Context, username string) (Identity, error)
}
