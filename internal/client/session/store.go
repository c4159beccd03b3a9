package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dnovikovs/recordkeeper/internal/client/models"
)

// TokenCookieName is the row the bearer token lives under, mirroring the
// browser cookie the web frontend used.
const TokenCookieName = "auth-token"

// TokenMaxAge matches the original cookie's 7-day expiry.
const TokenMaxAge = 7 * 24 * time.Hour

// Store persists the session token and device-level preferences between runs.
type Store interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
	Preferences(ctx context.Context) (models.Preferences, error)
	SavePreferences(ctx context.Context, prefs models.Preferences) error
	Close() error
}

// SQLiteStore keeps cookie-shaped rows (value plus expiry and transport
// attributes) and a preferences key/value table in a local sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS cookies (
  name       TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  expires_at INTEGER NOT NULL,
  secure     INTEGER NOT NULL DEFAULT 1,
  same_site  TEXT NOT NULL DEFAULT 'strict'
);

CREATE TABLE IF NOT EXISTS preferences (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// OpenStore opens (creating if needed) the session database at dsn.
func OpenStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already opened database. The schema must exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// LoadToken returns the persisted token, or "" when absent. An expired row
// is deleted and treated as absent.
func (s *SQLiteStore) LoadToken(ctx context.Context) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cookies WHERE name = ?`, TokenCookieName,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		if err := s.DeleteToken(ctx); err != nil {
			return "", err
		}
		return "", nil
	}
	return value, nil
}

func (s *SQLiteStore) SaveToken(ctx context.Context, token string) error {
	expiresAt := time.Now().Add(TokenMaxAge).Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, expires_at, secure, same_site)
		VALUES (?, ?, ?, 1, 'strict')
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, TokenCookieName, token, expiresAt)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, TokenCookieName)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

const preferencesKey = "user.preferences"

// Preferences returns the stored preferences, falling back to defaults when
// nothing has been saved yet.
func (s *SQLiteStore) Preferences(ctx context.Context) (models.Preferences, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, preferencesKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	prefs := models.DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, preferencesKey, string(raw))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
