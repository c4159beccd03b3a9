package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.SaveToken(ctx, "abc"))

	token, err = store.LoadToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, store.DeleteToken(ctx))

	token, err = store.LoadToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestSaveToken_Overwrites(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.SaveToken(ctx, "old"))
	require.NoError(t, store.SaveToken(ctx, "new"))

	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", token)
}

func TestLoadToken_ExpiredRowDropped(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:expired?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(storeSchema)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).Unix()
	_, err = db.Exec(
		`INSERT INTO cookies (name, value, expires_at) VALUES (?, ?, ?)`,
		TokenCookieName, "stale", past,
	)
	require.NoError(t, err)

	store := NewSQLiteStore(db)
	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	// the expired row must be gone, not just skipped
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&count))
	require.Zero(t, count)
}

func TestSaveToken_CookieAttributes(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:attrs?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(storeSchema)
	require.NoError(t, err)

	store := NewSQLiteStore(db)
	require.NoError(t, store.SaveToken(ctx, "abc"))

	var secure int
	var sameSite string
	var expiresAt int64
	err = db.QueryRow(
		`SELECT secure, same_site, expires_at FROM cookies WHERE name = ?`, TokenCookieName,
	).Scan(&secure, &sameSite, &expiresAt)
	require.NoError(t, err)
	require.Equal(t, 1, secure)
	require.Equal(t, "strict", sameSite)

	wantExpiry := time.Now().Add(TokenMaxAge).Unix()
	require.InDelta(t, wantExpiry, expiresAt, 5)
}

func TestPreferences_DefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	prefs, err := store.Preferences(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultPreferences(), prefs)

	prefs.Theme = "dark"
	require.NoError(t, store.SavePreferences(ctx, prefs))

	loaded, err := store.Preferences(ctx)
	require.NoError(t, err)
	require.Equal(t, "dark", loaded.Theme)
	require.Equal(t, "zh-CN", loaded.Language)
	require.Equal(t, "CNY", loaded.Currency)
}
