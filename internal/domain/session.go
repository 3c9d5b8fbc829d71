package domain

// User is the authenticated farmer identity as reported by the backend.
type User struct {
	ID    string
	Name  string
	Email string
}

// Session pairs a user with the bearer token issued for it. The two are
// always set and cleared together; a session with an empty token is invalid.
type Session struct {
	User  User
	Token string
}

func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != ""
}

// Phase tracks the session lifecycle. The only legal transitions are
// Uninitialized -> Restoring -> {Anonymous, Authenticated},
// Anonymous -> Authenticated on sign-in/sign-up, and
// Authenticated -> Anonymous on logout or server-side rejection.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseRestoring     Phase = "restoring"
	PhaseAnonymous     Phase = "anonymous"
	PhaseAuthenticated Phase = "authenticated"
)
