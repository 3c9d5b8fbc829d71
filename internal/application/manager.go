package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

// SessionTokenRef is the secret-store key under which the bearer token of the
// single active session is kept.
const SessionTokenRef = "krishi://session/token"

// Manager is the single source of truth for who is signed in, what
// predictions exist, and what the current weather context is. All mutation of
// session state, the cached prediction list, and the weather snapshot goes
// through its operations; callers only ever read snapshots.
type Manager struct {
	backend  ports.Backend
	sessions ports.SessionRepository
	secrets  ports.SecretStore
	weather  ports.WeatherProvider
	locator  ports.Locator
	clock    ports.Clock
	log      *zap.Logger

	mu              sync.RWMutex
	phase           domain.Phase
	session         *domain.Session
	predictions     []domain.Prediction
	snapshot        *domain.WeatherSnapshot
	authInFlight    bool
	opInFlight      bool
	weatherInFlight bool
}

func NewManager(
	backend ports.Backend,
	sessions ports.SessionRepository,
	secrets ports.SecretStore,
	weather ports.WeatherProvider,
	locator ports.Locator,
	clock ports.Clock,
	log *zap.Logger,
) *Manager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		backend:  backend,
		sessions: sessions,
		secrets:  secrets,
		weather:  weather,
		locator:  locator,
		clock:    clock,
		log:      log,
		phase:    domain.PhaseUninitialized,
	}
}

// Restore loads a previously persisted session, if any. A missing session is
// the normal logged-out state, not an error. Restore must complete before any
// other operation runs; it does not fetch history.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	m.phase = domain.PhaseRestoring
	m.mu.Unlock()

	profile, err := m.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			m.setAnonymousLocked()
			return nil
		}
		m.setAnonymousLocked()
		return fmt.Errorf("load persisted session: %w", err)
	}

	token, err := m.secrets.Get(ctx, profile.TokenRef)
	if err != nil || strings.TrimSpace(token) == "" {
		// A profile without its token is half a session; drop it rather than
		// restore an unusable state.
		m.log.Warn("persisted session missing token, clearing", zap.Error(err))
		_ = m.sessions.Clear(ctx)
		m.setAnonymousLocked()
		return nil
	}

	m.mu.Lock()
	m.session = &domain.Session{User: profile.User, Token: token}
	m.phase = domain.PhaseAuthenticated
	m.mu.Unlock()

	m.log.Debug("session restored", zap.String("user_id", profile.User.ID))
	return nil
}

// SignIn authenticates against the backend and persists the resulting
// session. On failure any prior session state is left untouched.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	m.setAuthInFlight(true)
	defer m.setAuthInFlight(false)

	session, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	if err := m.persistSession(ctx, session); err != nil {
		return err
	}

	m.mu.Lock()
	m.session = &session
	m.phase = domain.PhaseAuthenticated
	m.mu.Unlock()

	// A fresh sign-in triggers a history refresh; its failure does not undo
	// the sign-in.
	if err := m.RefreshHistory(ctx); err != nil {
		m.log.Warn("history refresh after sign-in failed", zap.Error(err))
	}

	return nil
}

// SignUp registers a new account. A new account starts with an empty
// prediction list; no history fetch is performed.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	m.setAuthInFlight(true)
	defer m.setAuthInFlight(false)

	session, err := m.backend.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}

	if err := m.persistSession(ctx, session); err != nil {
		return err
	}

	m.mu.Lock()
	m.session = &session
	m.phase = domain.PhaseAuthenticated
	m.predictions = nil
	m.mu.Unlock()

	return nil
}

// Logout clears the persisted session and all cached state. It cannot fail:
// store removal is best-effort and local state is always cleared. Calling it
// while already logged out leaves state unchanged.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.sessions.Clear(ctx); err != nil {
		m.log.Warn("clear persisted session", zap.Error(err))
	}
	if err := m.secrets.Delete(ctx, SessionTokenRef); err != nil {
		m.log.Warn("delete session token", zap.Error(err))
	}

	m.mu.Lock()
	m.session = nil
	m.predictions = nil
	m.snapshot = nil
	m.phase = domain.PhaseAnonymous
	m.mu.Unlock()
}

// SubmitPrediction sends the parameter bag to the backend and returns the
// server-created record. It fails before any network call when no session
// exists or the parameters are invalid. The caller decides whether and where
// to insert the returned record locally.
func (m *Manager) SubmitPrediction(ctx context.Context, params domain.Parameters) (domain.Prediction, error) {
	token := m.token()
	if token == "" {
		return domain.Prediction{}, domain.ErrNotAuthenticated
	}

	if err := params.Validate(); err != nil {
		return domain.Prediction{}, err
	}

	m.setOpInFlight(true)
	defer m.setOpInFlight(false)

	record, err := m.backend.SubmitPrediction(ctx, token, params)
	if err != nil {
		if errors.Is(err, domain.ErrSessionRejected) {
			m.Logout(ctx)
		}
		return domain.Prediction{}, fmt.Errorf("submit prediction: %w", err)
	}

	return record, nil
}

// InsertPredictionLocally prepends a record to the cached list without
// contacting the network. Used for optimistic display after a successful
// submission; the next RefreshHistory supersedes it. A record the backend did
// not timestamp gets the local time so it still sorts and renders as fresh.
func (m *Manager) InsertPredictionLocally(record domain.Prediction) {
	if record.CreatedDate.IsZero() {
		record.CreatedDate = m.clock.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.predictions = append([]domain.Prediction{record}, m.predictions...)
}

// RefreshHistory replaces the cached prediction list wholesale with the
// backend's. The backend is authoritative: no merging with optimistic
// inserts. A no-op when not signed in.
func (m *Manager) RefreshHistory(ctx context.Context) error {
	token := m.token()
	if token == "" {
		return nil
	}

	m.setOpInFlight(true)
	defer m.setOpInFlight(false)

	records, err := m.backend.History(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionRejected) {
			m.Logout(ctx)
		}
		return fmt.Errorf("refresh history: %w", err)
	}

	m.mu.Lock()
	m.predictions = records
	m.mu.Unlock()

	return nil
}

// FetchLocationAndWeather resolves the farm location and caches one weather
// snapshot per session. A second call is a no-op returning the cached
// snapshot. Any failure leaves the snapshot empty and the rest of the
// application unaffected.
func (m *Manager) FetchLocationAndWeather(ctx context.Context) (domain.WeatherSnapshot, error) {
	m.mu.Lock()
	if m.snapshot != nil {
		cached := *m.snapshot
		m.mu.Unlock()
		return cached, nil
	}
	if m.weatherInFlight {
		m.mu.Unlock()
		return domain.WeatherSnapshot{}, nil
	}
	m.weatherInFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.weatherInFlight = false
		m.mu.Unlock()
	}()

	coords, err := m.locator.Locate(ctx)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}

	snapshot, err := m.weather.Current(ctx, coords)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("fetch weather: %w", err)
	}

	m.mu.Lock()
	m.snapshot = &snapshot
	m.mu.Unlock()

	m.log.Debug("weather snapshot cached", zap.String("location", snapshot.LocationLabel))
	return snapshot, nil
}

func (m *Manager) Phase() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.phase
}

// Session returns a copy of the current session, or nil when logged out.
func (m *Manager) Session() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// Predictions returns a copy of the cached list, newest first.
func (m *Manager) Predictions() []domain.Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Prediction, len(m.predictions))
	copy(out, m.predictions)
	return out
}

// Weather returns a copy of the cached snapshot, or nil when none was fetched.
func (m *Manager) Weather() *domain.WeatherSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return nil
	}
	copied := *m.snapshot
	return &copied
}

func (m *Manager) AuthInFlight() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.authInFlight
}

func (m *Manager) OperationInFlight() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.opInFlight
}

func (m *Manager) WeatherInFlight() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.weatherInFlight
}

// persistSession writes the token and the profile, rolling the token back if
// the profile write fails so the store never holds half a session.
func (m *Manager) persistSession(ctx context.Context, session domain.Session) error {
	if err := m.secrets.Put(ctx, SessionTokenRef, session.Token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}

	profile := ports.SessionProfile{User: session.User, TokenRef: SessionTokenRef}
	if err := m.sessions.Save(ctx, profile); err != nil {
		if rollbackErr := m.secrets.Delete(ctx, SessionTokenRef); rollbackErr != nil {
			return fmt.Errorf("save session profile and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save session profile: %w", err)
	}

	return nil
}

func (m *Manager) token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return ""
	}
	return m.session.Token
}

func (m *Manager) setAnonymousLocked() {
	m.mu.Lock()
	m.session = nil
	m.phase = domain.PhaseAnonymous
	m.mu.Unlock()
}

func (m *Manager) setAuthInFlight(v bool) {
	m.mu.Lock()
	m.authInFlight = v
	m.mu.Unlock()
}

func (m *Manager) setOpInFlight(v bool) {
	m.mu.Lock()
	m.opInFlight = v
	m.mu.Unlock()
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("email and password are required")
	}
	return nil
}
