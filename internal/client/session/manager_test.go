package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dnovikovs/recordkeeper/internal/client/api"
	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/dnovikovs/recordkeeper/internal/logging"
	"github.com/dnovikovs/recordkeeper/internal/validate"

	_ "modernc.org/sqlite"
)

// fakeAPI implements api.Client with canned per-endpoint responses.
type fakeAPI struct {
	posts []string
	gets  []string

	errs map[string]error
	resp map[string]string // endpoint -> JSON decoded into out
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{errs: map[string]error{}, resp: map[string]string{}}
}

func (f *fakeAPI) deliver(endpoint string, out any) error {
	if err := f.errs[endpoint]; err != nil {
		return err
	}
	if raw, ok := f.resp[endpoint]; ok && out != nil {
		return json.Unmarshal([]byte(raw), out)
	}
	return nil
}

func (f *fakeAPI) Get(_ context.Context, endpoint string, _ url.Values, out any) error {
	f.gets = append(f.gets, endpoint)
	return f.deliver(endpoint, out)
}

func (f *fakeAPI) Post(_ context.Context, endpoint string, _ any, out any) error {
	f.posts = append(f.posts, endpoint)
	return f.deliver(endpoint, out)
}

func (f *fakeAPI) Put(_ context.Context, endpoint string, _ any, out any) error {
	return f.deliver(endpoint, out)
}

func (f *fakeAPI) Delete(_ context.Context, endpoint string) error {
	return f.deliver(endpoint, nil)
}

func (f *fakeAPI) Ping(context.Context) error { return nil }

type fakeNav struct {
	paths []string
}

func (n *fakeNav) Navigate(path string) { n.paths = append(n.paths, path) }

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func memStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(context.Background(), "file:mgr_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newManager(t *testing.T, f *fakeAPI) (*Manager, *fakeNav, *SQLiteStore) {
	t.Helper()
	nav := &fakeNav{}
	store := memStore(t)
	m := NewManager(context.Background(), f, store, nav, testLogger())
	return m, nav, store
}

const loginJSON = `{"token":"abc","user":{"id":"u1","email":"alice@example.org","name":"Alice"}}`

func TestIsLoggedIn_DerivedFromTokenOnly(t *testing.T) {
	m := &Manager{log: testLogger()}
	require.False(t, m.IsLoggedIn())

	// token without user: still logged in
	m.token = "abc"
	require.True(t, m.IsLoggedIn())
	require.Nil(t, m.User())
}

func TestLogin_Success(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/login"] = loginJSON
	m, nav, store := newManager(t, f)

	err := m.Login(context.Background(), models.Credentials{Email: "alice@example.org", Password: "secret1"})
	require.NoError(t, err)

	require.True(t, m.IsLoggedIn())
	require.Equal(t, "abc", m.Token())
	require.Equal(t, "Alice", m.User().Name)
	require.Equal(t, []string{"/"}, nav.paths)

	persisted, err := store.LoadToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc", persisted)
}

func TestLogin_FailureStaysAnonymous(t *testing.T) {
	f := newFakeAPI()
	f.errs["/auth/login"] = &api.HTTPError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	m, nav, _ := newManager(t, f)

	err := m.Login(context.Background(), models.Credentials{Email: "alice@example.org", Password: "secret1"})

	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.False(t, m.IsLoggedIn())
	require.Nil(t, m.User())
	require.Empty(t, nav.paths)
}

func TestLogin_ValidationSkipsRequest(t *testing.T) {
	f := newFakeAPI()
	m, nav, _ := newManager(t, f)

	err := m.Login(context.Background(), models.Credentials{Email: "bad", Password: "x"})

	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, f.posts)
	require.Empty(t, nav.paths)
}

func TestRegister_Success(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/register"] = loginJSON
	m, nav, _ := newManager(t, f)

	reg := models.Registration{Name: "Alice", Email: "alice@example.org", Password: "secret1"}
	require.NoError(t, m.Register(context.Background(), reg))
	require.True(t, m.IsLoggedIn())
	require.Equal(t, []string{"/"}, nav.paths)
}

func TestLogout_AlwaysClearsLocally(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/login"] = loginJSON
	f.errs["/auth/logout"] = api.ErrNetwork
	m, nav, store := newManager(t, f)

	creds := models.Credentials{Email: "alice@example.org", Password: "secret1"}
	require.NoError(t, m.Login(context.Background(), creds))

	m.Logout(context.Background())

	require.False(t, m.IsLoggedIn())
	require.Nil(t, m.User())
	require.Equal(t, []string{"/", "/auth/login"}, nav.paths)

	persisted, err := store.LoadToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestFetchUser_ReplacesProfile(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/me"] = `{"id":"u1","email":"alice@example.org","name":"Alice"}`
	m, _, _ := newManager(t, f)
	m.token = "abc"

	require.NoError(t, m.FetchUser(context.Background()))
	require.Equal(t, "alice@example.org", m.User().Email)
}

func TestFetchUser_FailureClearsToken(t *testing.T) {
	f := newFakeAPI()
	f.errs["/auth/me"] = &api.APIError{Code: 401, Message: "token expired"}
	m, _, _ := newManager(t, f)
	m.token = "abc"

	err := m.FetchUser(context.Background())
	require.Error(t, err)
	require.False(t, m.IsLoggedIn())
}

func TestFetchUser_AnonymousIsNoop(t *testing.T) {
	f := newFakeAPI()
	m, _, _ := newManager(t, f)

	require.NoError(t, m.FetchUser(context.Background()))
	require.Empty(t, f.gets)
}

func TestRefreshToken_Success(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/refresh"] = `{"token":"fresh"}`
	m, nav, store := newManager(t, f)
	m.token = "stale"

	require.True(t, m.RefreshToken(context.Background()))
	require.Equal(t, "fresh", m.Token())
	require.Empty(t, nav.paths)

	persisted, err := store.LoadToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", persisted)
}

func TestRefreshToken_FailureLogsOut(t *testing.T) {
	f := newFakeAPI()
	f.errs["/auth/refresh"] = api.ErrNetwork
	m, nav, _ := newManager(t, f)
	m.token = "stale"

	require.False(t, m.RefreshToken(context.Background()))
	require.False(t, m.IsLoggedIn())
	require.Equal(t, []string{"/auth/login"}, nav.paths)
}

func TestCheckAuth_FetchesOnceThenIdempotent(t *testing.T) {
	f := newFakeAPI()
	f.resp["/auth/me"] = `{"id":"u1","email":"alice@example.org"}`
	m, _, _ := newManager(t, f)
	m.token = "abc"

	m.CheckAuth(context.Background())
	m.CheckAuth(context.Background())

	require.Equal(t, []string{"/auth/me"}, f.gets)
}

func TestCheckAuth_AnonymousDoesNothing(t *testing.T) {
	f := newFakeAPI()
	m, _, _ := newManager(t, f)

	m.CheckAuth(context.Background())
	require.Empty(t, f.gets)
}

func TestCheckAuth_SwallowsServerFailure(t *testing.T) {
	f := newFakeAPI()
	f.errs["/auth/me"] = api.ErrNetwork
	m, _, _ := newManager(t, f)
	m.token = "abc"

	require.NotPanics(t, func() { m.CheckAuth(context.Background()) })
	require.False(t, m.IsLoggedIn())
}

func TestNewManager_RestoresPersistedToken(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)
	require.NoError(t, store.SaveToken(ctx, "persisted"))

	m := NewManager(ctx, newFakeAPI(), store, &fakeNav{}, testLogger())
	require.Equal(t, "persisted", m.Token())
}

func TestNewManager_DropsLocallyExpiredJWT(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-key"))
	require.NoError(t, err)
	require.NoError(t, store.SaveToken(ctx, signed))

	m := NewManager(ctx, newFakeAPI(), store, &fakeNav{}, testLogger())
	require.False(t, m.IsLoggedIn())

	persisted, err := store.LoadToken(ctx)
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestNewManager_KeepsOpaqueToken(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)
	require.NoError(t, store.SaveToken(ctx, "not-a-jwt"))

	m := NewManager(ctx, newFakeAPI(), store, &fakeNav{}, testLogger())
	require.True(t, m.IsLoggedIn())
}

func TestUpdatePreferences_MergesAndPersists(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newManager(t, newFakeAPI())

	prefs, err := m.UpdatePreferences(ctx, models.Preferences{Theme: "dark"})
	require.NoError(t, err)
	require.Equal(t, "dark", prefs.Theme)
	require.Equal(t, "CNY", prefs.Currency)

	loaded, err := m.Preferences(ctx)
	require.NoError(t, err)
	require.Equal(t, "dark", loaded.Theme)
}
