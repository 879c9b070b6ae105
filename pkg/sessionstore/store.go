// Package sessionstore persists per-user conversation state and serializes
// concurrent access to the same (uid, session_id) (spec.md §4.2).
package sessionstore

import (
	"context"
	stdsql "database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver for the migration runner's database/sql handle
	"github.com/medsync-ai/orchestrator/pkg/models"
)

//go:embed migrations
var migrationsFS embed.FS

// dbConn is the slice of *pgxpool.Pool the store actually calls, narrowed so
// tests can exercise Store against a hand-rolled fake instead of a live
// Postgres instance.
type dbConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store is the persistent session and turn store, backed by a pgx pool.
// Per-(uid,session_id) locks serialize read-modify-write sequences; per
// spec.md §5 "concurrent reads proceed under the same lock for simplicity".
type Store struct {
	pool  dbConn
	locks sync.Map // sanitized key -> *sync.Mutex
}

// New wraps an already-connected pool. Call Migrate once at startup before
// serving traffic.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies pending schema migrations using the embedded SQL files,
// the same golang-migrate + embedded-FS shape teacher pkg/database uses,
// adapted to run against a plain pgx connection string instead of through a
// generated ORM client.
func Migrate(ctx context.Context, dsn string) error {
	db, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migrate driver: %w", err)
	}
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sessionstore", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return sourceDriver.Close()
}

// lockFor returns the mutex for one sanitized (uid, session_id) pair,
// creating it on first use.
func (s *Store) lockFor(uid, sessionID string) *sync.Mutex {
	key := sanitizeKey(uid) + "/" + sanitizeKey(sessionID)
	actual, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Get implements spec.md §4.2: returns cached/loaded state, creating a new
// session if absent. Acquires the session lock for the duration of the call
// only; callers performing a read-modify-write sequence against the result
// (load, mutate, then Save/SaveTurn) must use WithLock instead, which holds
// the lock across the whole sequence.
func (s *Store) Get(ctx context.Context, uid, sessionID string) (*models.Session, error) {
	lock := s.lockFor(uid, sessionID)
	lock.Lock()
	defer lock.Unlock()
	return s.getLocked(ctx, uid, sessionID)
}

// Save implements spec.md §4.2: persists the full session state atomically.
func (s *Store) Save(ctx context.Context, uid, sessionID string, sess *models.Session) error {
	lock := s.lockFor(uid, sessionID)
	lock.Lock()
	defer lock.Unlock()
	return s.saveLocked(ctx, uid, sessionID, sess)
}

// SaveTurn implements spec.md §4.2: appends one turn into history.
func (s *Store) SaveTurn(ctx context.Context, uid, sessionID, turnID string, turn models.Turn) error {
	lock := s.lockFor(uid, sessionID)
	lock.Lock()
	defer lock.Unlock()
	return s.saveTurnLocked(ctx, uid, sessionID, turnID, turn)
}

// Locked scopes Get/Save/SaveTurn to a (uid, session_id) lock already held
// by WithLock, so a caller can chain them into one read-modify-write
// sequence without re-acquiring (and deadlocking on) the same mutex.
type Locked struct {
	s         *Store
	uid       string
	sessionID string
}

func (l *Locked) Get(ctx context.Context) (*models.Session, error) {
	return l.s.getLocked(ctx, l.uid, l.sessionID)
}

func (l *Locked) Save(ctx context.Context, sess *models.Session) error {
	return l.s.saveLocked(ctx, l.uid, l.sessionID, sess)
}

func (l *Locked) SaveTurn(ctx context.Context, turnID string, turn models.Turn) error {
	return l.s.saveTurnLocked(ctx, l.uid, l.sessionID, turnID, turn)
}

// WithLock acquires the per-(uid, session_id) lock for the duration of fn,
// per spec.md §4.2: "Each session has a lock acquired for the duration of
// any read-modify-write sequence." A caller that loads a session, mutates
// it, and saves it back must do all three through the Locked handle fn
// receives, not through Store's own Get/Save/SaveTurn, or it reacquires the
// same mutex and deadlocks.
func (s *Store) WithLock(ctx context.Context, uid, sessionID string, fn func(ctx context.Context, l *Locked) error) error {
	lock := s.lockFor(uid, sessionID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, &Locked{s: s, uid: uid, sessionID: sessionID})
}

func (s *Store) getLocked(ctx context.Context, uid, sessionID string) (*models.Session, error) {
	uid, sessionID = sanitizeKey(uid), sanitizeKey(sessionID)

	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM sessions WHERE uid = $1 AND session_id = $2`, uid, sessionID,
	).Scan(&raw)
	switch {
	case err == nil:
		var sess models.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("unmarshal session state: %w", err)
		}
		sess.UID, sess.SessionID = uid, sessionID
		return &sess, nil
	case errors.Is(err, pgx.ErrNoRows):
		return &models.Session{UID: uid, SessionID: sessionID}, nil
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}
}

func (s *Store) saveLocked(ctx context.Context, uid, sessionID string, sess *models.Session) error {
	uid, sessionID = sanitizeKey(uid), sanitizeKey(sessionID)
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (uid, session_id, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (uid, session_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
	`, uid, sessionID, raw)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) saveTurnLocked(ctx context.Context, uid, sessionID, turnID string, turn models.Turn) error {
	uid, sessionID = sanitizeKey(uid), sanitizeKey(sessionID)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO turns (uid, session_id, turn_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid, session_id, turn_id) DO NOTHING
	`, uid, sessionID, turnID, turn.Role, turn.Content, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// IncrementTokenCounters implements spec.md §5's atomic-increment primitive
// for the user-level token ledger.
func (s *Store) IncrementTokenCounters(ctx context.Context, uid string, input, output int64) error {
	uid = sanitizeKey(uid)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO token_counters (uid, input_tokens, output_tokens) VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO UPDATE SET
			input_tokens = token_counters.input_tokens + EXCLUDED.input_tokens,
			output_tokens = token_counters.output_tokens + EXCLUDED.output_tokens
	`, uid, input, output)
	if err != nil {
		return fmt.Errorf("increment token counters: %w", err)
	}
	return nil
}
