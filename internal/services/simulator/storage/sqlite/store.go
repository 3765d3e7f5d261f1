package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/cypress-simulator/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/storage"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/storage/sqlite/migrations"
	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for sessions and consent.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a simulator SQLite store.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutSession upserts the session of a browser context.
func (s *Store) PutSession(ctx context.Context, sess session.Session) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	clientID := strings.TrimSpace(sess.ClientID)
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (client_id, session_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET
			session_id = excluded.session_id,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		clientID,
		sess.ID,
		toMillis(sess.CreatedAt),
		toMillis(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession loads the session of a browser context.
func (s *Store) GetSession(ctx context.Context, clientID string) (session.Session, bool, error) {
	if s == nil || s.sqlDB == nil {
		return session.Session{}, false, fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return session.Session{}, false, nil
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT client_id, session_id, created_at, expires_at
		 FROM sessions
		 WHERE client_id = ?`,
		clientID,
	)
	var (
		sess      session.Session
		createdAt int64
		expiresAt int64
	)
	if err := row.Scan(&sess.ClientID, &sess.ID, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = fromMillis(createdAt)
	sess.ExpiresAt = fromMillis(expiresAt)
	return sess, true, nil
}

// DeleteSession removes the session of a browser context.
func (s *Store) DeleteSession(ctx context.Context, clientID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE client_id = ?`, strings.TrimSpace(clientID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired sessions: %w", err)
	}
	return removed, nil
}

// GetConsent returns the consent of a browser context; Unset when missing.
func (s *Store) GetConsent(ctx context.Context, clientID string) (consent.State, error) {
	if s == nil || s.sqlDB == nil {
		return consent.Unset, fmt.Errorf("storage is not configured")
	}
	var value string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT value FROM client_storage WHERE client_id = ? AND storage_key = ?`,
		strings.TrimSpace(clientID),
		consent.StorageKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return consent.Unset, nil
		}
		return consent.Unset, fmt.Errorf("get consent: %w", err)
	}
	state, ok := consent.ParseState(value)
	if !ok {
		return consent.Unset, nil
	}
	return state, nil
}

// PutConsent upserts the consent of a browser context.
func (s *Store) PutConsent(ctx context.Context, clientID string, state consent.State) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}
	if !state.Decided() {
		return fmt.Errorf("consent state %q cannot be stored", state)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO client_storage (client_id, storage_key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(client_id, storage_key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		clientID,
		consent.StorageKey,
		string(state),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put consent: %w", err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ storage.Store = (*Store)(nil)
