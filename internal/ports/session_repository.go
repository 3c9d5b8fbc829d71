package ports

import (
	"context"

	"github.com/krishisense/krishi-cli/internal/domain"
)

// SessionProfile is the durable half of a session: the user identity plus a
// reference into the secret store where the bearer token lives. Absence of a
// profile is the normal logged-out state, reported as domain.ErrSessionNotFound.
type SessionProfile struct {
	User     domain.User
	TokenRef string
}

type SessionRepository interface {
	Load(ctx context.Context) (SessionProfile, error)
	Save(ctx context.Context, profile SessionProfile) error
	// Clear removes the persisted profile. Clearing an absent profile is not
	// an error.
	Clear(ctx context.Context) error
}
