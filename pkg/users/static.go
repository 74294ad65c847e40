package users

import (
	"context"

	"github.com/annolab/margin/errors"
)

// Static resolves identities from a fixed map. Used by tests and offline
// sessions.
type Static struct {
	Users map[string]Identity
}

// NewStatic creates a Static lookup over the given map.
func NewStatic(users map[string]Identity) *Static {
	return &Static{Users: users}
}

// Lookup returns the mapped identity or a USER_LOOKUP not-found.
func (s *Static) Lookup(_ context.Context, username string) (Identity, error) {
	id, ok := s.Users[username]
	if !ok {
		return Identity{}, errors.UserNotFound(username)
	}
	return id, nil
}
