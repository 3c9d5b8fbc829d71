package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

type fakeBackend struct {
	mu sync.Mutex

	loginSession    domain.Session
	loginErr        error
	registerSession domain.Session
	registerErr     error
	submitRecord    domain.Prediction
	submitErr       error
	historyRecords  []domain.Prediction
	historyErr      error

	loginCalls    int
	registerCalls int
	submitCalls   int
	historyCalls  int
}

func (b *fakeBackend) Login(_ context.Context, _, _ string) (domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginCalls++
	return b.loginSession, b.loginErr
}

func (b *fakeBackend) Register(_ context.Context, _, _, _ string) (domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registerCalls++
	return b.registerSession, b.registerErr
}

func (b *fakeBackend) SubmitPrediction(_ context.Context, _ string, _ domain.Parameters) (domain.Prediction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitCalls++
	return b.submitRecord, b.submitErr
}

func (b *fakeBackend) History(_ context.Context, _ string) ([]domain.Prediction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.historyCalls++
	return b.historyRecords, b.historyErr
}

type inMemorySessionRepo struct {
	mu      sync.Mutex
	profile *ports.SessionProfile
	saveErr error
}

func (r *inMemorySessionRepo) Load(_ context.Context) (ports.SessionProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil {
		return ports.SessionProfile{}, domain.ErrSessionNotFound
	}
	return *r.profile, nil
}

func (r *inMemorySessionRepo) Save(_ context.Context, profile ports.SessionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.profile = &profile
	return nil
}

func (r *inMemorySessionRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = nil
	return nil
}

type inMemorySecretStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

func newInMemorySecretStore() *inMemorySecretStore {
	return &inMemorySecretStore{secrets: map[string]string{}}
}

func (s *inMemorySecretStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.secrets[key]
	if !ok {
		return "", errors.New("secret not found")
	}
	return value, nil
}

func (s *inMemorySecretStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = value
	return nil
}

func (s *inMemorySecretStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, key)
	return nil
}

type fakeWeather struct {
	mu       sync.Mutex
	snapshot domain.WeatherSnapshot
	err      error
	calls    int
}

func (w *fakeWeather) Current(_ context.Context, _ domain.Coordinates) (domain.WeatherSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return w.snapshot, w.err
}

type fakeLocator struct {
	coords domain.Coordinates
	err    error
}

func (l *fakeLocator) Locate(_ context.Context) (domain.Coordinates, error) {
	return l.coords, l.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type managerFixture struct {
	backend  *fakeBackend
	sessions *inMemorySessionRepo
	secrets  *inMemorySecretStore
	weather  *fakeWeather
	locator  *fakeLocator
	manager  *Manager
}

func newFixture() *managerFixture {
	f := &managerFixture{
		backend:  &fakeBackend{},
		sessions: &inMemorySessionRepo{},
		secrets:  newInMemorySecretStore(),
		weather:  &fakeWeather{},
		locator:  &fakeLocator{coords: domain.Coordinates{Latitude: 18.5, Longitude: 73.8}},
	}
	f.manager = NewManager(f.backend, f.sessions, f.secrets, f.weather, f.locator, fixedClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}, nil)
	return f
}

func validParams() domain.Parameters {
	return domain.Parameters{
		Nitrogen:    90,
		Phosphorus:  42,
		Potassium:   43,
		Temperature: 25,
		Humidity:    80,
		PH:          6.5,
		Rainfall:    120,
	}
}

func TestRestoreWithoutPersistedSessionIsAnonymous(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.manager.Restore(context.Background()))

	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
	assert.Nil(t, f.manager.Session())
}

func TestRestoreLoadsPersistedSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.sessions.profile = &ports.SessionProfile{
		User:     domain.User{ID: "1", Name: "A", Email: "a@b.com"},
		TokenRef: SessionTokenRef,
	}
	require.NoError(t, f.secrets.Put(context.Background(), SessionTokenRef, "tok1"))

	require.NoError(t, f.manager.Restore(context.Background()))

	assert.Equal(t, domain.PhaseAuthenticated, f.manager.Phase())
	session := f.manager.Session()
	require.NotNil(t, session)
	assert.Equal(t, "tok1", session.Token)
	assert.Equal(t, "a@b.com", session.User.Email)
}

func TestRestoreClearsProfileMissingItsToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.sessions.profile = &ports.SessionProfile{
		User:     domain.User{ID: "1", Name: "A", Email: "a@b.com"},
		TokenRef: SessionTokenRef,
	}

	require.NoError(t, f.manager.Restore(context.Background()))

	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
	assert.Nil(t, f.sessions.profile)
}

func TestSignInSetsSessionAndPersistsPair(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{
		User:  domain.User{ID: "1", Name: "A", Email: "a@b.com"},
		Token: "tok1",
	}
	require.NoError(t, f.manager.Restore(context.Background()))

	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	session := f.manager.Session()
	require.NotNil(t, session)
	assert.Equal(t, domain.User{ID: "1", Name: "A", Email: "a@b.com"}, session.User)
	assert.Equal(t, "tok1", session.Token)
	assert.Equal(t, domain.PhaseAuthenticated, f.manager.Phase())

	require.NotNil(t, f.sessions.profile)
	assert.Equal(t, "a@b.com", f.sessions.profile.User.Email)
	token, err := f.secrets.Get(context.Background(), SessionTokenRef)
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
}

func TestSignInTriggersHistoryRefresh(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	f.backend.historyRecords = []domain.Prediction{{ID: "h1", Crop: "Rice"}}

	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	assert.Equal(t, 1, f.backend.historyCalls)
	require.Len(t, f.manager.Predictions(), 1)
	assert.Equal(t, "h1", f.manager.Predictions()[0].ID)
}

func TestSignInFailureLeavesPriorStateUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	f.backend.loginErr = errors.New("invalid credentials")
	err := f.manager.SignIn(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	session := f.manager.Session()
	require.NotNil(t, session)
	assert.Equal(t, "tok1", session.Token)
	assert.Equal(t, domain.PhaseAuthenticated, f.manager.Phase())
}

func TestSignInRollsBackTokenWhenProfileSaveFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	f.sessions.saveErr = errors.New("disk full")

	err := f.manager.SignIn(context.Background(), "a@b.com", "x")
	require.Error(t, err)

	_, getErr := f.secrets.Get(context.Background(), SessionTokenRef)
	assert.Error(t, getErr, "token must not outlive a failed profile save")
	assert.Nil(t, f.manager.Session())
}

func TestSignUpStartsWithEmptyPredictionList(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.registerSession = domain.Session{User: domain.User{ID: "2", Name: "B"}, Token: "tok2"}
	f.backend.historyRecords = []domain.Prediction{{ID: "stale"}}

	require.NoError(t, f.manager.SignUp(context.Background(), "B", "b@c.com", "pw"))

	assert.Equal(t, 0, f.backend.historyCalls, "sign-up must not fetch history")
	assert.Empty(t, f.manager.Predictions())
	assert.Equal(t, domain.PhaseAuthenticated, f.manager.Phase())
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	f.backend.historyRecords = []domain.Prediction{{ID: "h1"}}
	f.weather.snapshot = domain.WeatherSnapshot{TemperatureC: 25, LocationLabel: "Pune, IN"}

	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))
	_, err := f.manager.FetchLocationAndWeather(context.Background())
	require.NoError(t, err)

	f.manager.Logout(context.Background())

	assert.Nil(t, f.manager.Session())
	assert.Empty(t, f.manager.Predictions())
	assert.Nil(t, f.manager.Weather())
	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
	assert.Nil(t, f.sessions.profile)
	_, getErr := f.secrets.Get(context.Background(), SessionTokenRef)
	assert.Error(t, getErr)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.manager.Restore(context.Background()))

	f.manager.Logout(context.Background())
	f.manager.Logout(context.Background())

	assert.Nil(t, f.manager.Session())
	assert.Empty(t, f.manager.Predictions())
	assert.Nil(t, f.manager.Weather())
	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
}

func TestSubmitPredictionWithoutSessionMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.manager.Restore(context.Background()))

	_, err := f.manager.SubmitPrediction(context.Background(), validParams())
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, 0, f.backend.submitCalls)
}

func TestSubmitPredictionRejectsInvalidParametersBeforeNetwork(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	params := validParams()
	params.PH = 19

	_, err := f.manager.SubmitPrediction(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, 0, f.backend.submitCalls)
}

func TestSubmitThenInsertThenRefreshReplacesWholesale(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	f.backend.historyRecords = []domain.Prediction{{ID: "old", Crop: "Wheat"}}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	created := domain.Prediction{ID: "new", Crop: "Rice", ConfidencePercent: 92}
	f.backend.submitRecord = created

	record, err := f.manager.SubmitPrediction(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, created, record)

	// The manager does not auto-insert; the caller does.
	require.Len(t, f.manager.Predictions(), 1)
	f.manager.InsertPredictionLocally(record)

	predictions := f.manager.Predictions()
	require.Len(t, predictions, 2)
	assert.Equal(t, "new", predictions[0].ID, "optimistic insert goes first")

	// Backend is authoritative once a refresh lands.
	f.backend.historyRecords = []domain.Prediction{
		{ID: "new", Crop: "Rice", ConfidencePercent: 92},
		{ID: "old", Crop: "Wheat"},
	}
	require.NoError(t, f.manager.RefreshHistory(context.Background()))

	predictions = f.manager.Predictions()
	require.Len(t, predictions, 2)
	assert.Equal(t, f.backend.historyRecords, predictions)
}

func TestSubmitPredictionRejectedSessionTearsDown(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	f.backend.submitErr = domain.ErrSessionRejected

	_, err := f.manager.SubmitPrediction(context.Background(), validParams())
	require.ErrorIs(t, err, domain.ErrSessionRejected)

	assert.Nil(t, f.manager.Session())
	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
	assert.Nil(t, f.sessions.profile)
	_, getErr := f.secrets.Get(context.Background(), SessionTokenRef)
	assert.Error(t, getErr)
}

func TestInsertPredictionLocallyStampsMissingDate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.manager.InsertPredictionLocally(domain.Prediction{ID: "p1", Crop: "Rice"})

	predictions := f.manager.Predictions()
	require.Len(t, predictions, 1)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), predictions[0].CreatedDate)
}

func TestRefreshHistoryNoOpsWithoutSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.manager.Restore(context.Background()))

	require.NoError(t, f.manager.RefreshHistory(context.Background()))
	assert.Equal(t, 0, f.backend.historyCalls)
}

func TestRefreshHistoryRejectedSessionTearsDown(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))

	f.backend.historyErr = domain.ErrSessionRejected

	err := f.manager.RefreshHistory(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionRejected)
	assert.Nil(t, f.manager.Session())
	assert.Equal(t, domain.PhaseAnonymous, f.manager.Phase())
}

func TestFetchLocationAndWeatherCachesOncePerSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.weather.snapshot = domain.WeatherSnapshot{
		TemperatureC:  25,
		HumidityPct:   80,
		RainfallMM:    1.2,
		LocationLabel: "Pune, IN",
	}

	first, err := f.manager.FetchLocationAndWeather(context.Background())
	require.NoError(t, err)
	second, err := f.manager.FetchLocationAndWeather(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.weather.calls, "second call must not hit the network")
}

func TestFetchLocationAndWeatherDegradesWhenLocationUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.locator.err = domain.ErrLocationUnavailable

	_, err := f.manager.FetchLocationAndWeather(context.Background())
	require.ErrorIs(t, err, domain.ErrLocationUnavailable)
	assert.Nil(t, f.manager.Weather())
	assert.Equal(t, 0, f.weather.calls)

	// Prediction submission stays possible without weather data.
	f.backend.loginSession = domain.Session{User: domain.User{ID: "1"}, Token: "tok1"}
	require.NoError(t, f.manager.SignIn(context.Background(), "a@b.com", "x"))
	_, err = f.manager.SubmitPrediction(context.Background(), validParams())
	require.NoError(t, err)
}

func TestFetchLocationAndWeatherFailureLeavesSnapshotEmptyForRetry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.weather.err = errors.New("provider down")

	_, err := f.manager.FetchLocationAndWeather(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.manager.Weather())

	f.weather.err = nil
	f.weather.snapshot = domain.WeatherSnapshot{TemperatureC: 21}

	snapshot, err := f.manager.FetchLocationAndWeather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, snapshot.TemperatureC)
}

func TestSignInValidatesInputBeforeNetwork(t *testing.T) {
	t.Parallel()

	f := newFixture()

	require.Error(t, f.manager.SignIn(context.Background(), "", "pw"))
	require.Error(t, f.manager.SignIn(context.Background(), "a@b.com", ""))
	require.Error(t, f.manager.SignUp(context.Background(), "", "a@b.com", "pw"))
	assert.Equal(t, 0, f.backend.loginCalls)
	assert.Equal(t, 0, f.backend.registerCalls)
}
