package toml

import (
	"fmt"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session"`
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	User     userSchema `toml:"user"`
	TokenRef string     `toml:"token_ref"`
}

type userSchema struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

func toSchema(profile ports.SessionProfile) sessionSchema {
	return sessionSchema{
		User: userSchema{
			ID:    profile.User.ID,
			Name:  profile.User.Name,
			Email: profile.User.Email,
		},
		TokenRef: profile.TokenRef,
	}
}

func fromSchema(entry sessionSchema) ports.SessionProfile {
	return ports.SessionProfile{
		User: domain.User{
			ID:    entry.User.ID,
			Name:  entry.User.Name,
			Email: entry.User.Email,
		},
		TokenRef: entry.TokenRef,
	}
}
