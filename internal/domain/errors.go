package domain

import "errors"

var (
	ErrNotAuthenticated    = errors.New("not signed in")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionRejected     = errors.New("session rejected by backend")
	ErrLocationUnavailable = errors.New("farm location unavailable")
)
