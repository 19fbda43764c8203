// Package store persists orchestrator state in SQLite: sessions, the
// upstream call log, and the FIFO queue of requests waiting for the
// active session to finish.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a *sql.DB plus the mutex that serialises the
// select-or-enqueue critical section: SQLite already serialises
// writers at the database level, but the decision of whether to
// activate or enqueue a new session has to be made and committed
// atomically from Go's point of view too.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the SQLite database at the given
// URL/path and ensures the schema exists.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("sqlite", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", databaseURL, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one handle
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id   TEXT PRIMARY KEY,
		user_name    TEXT,
		status       TEXT NOT NULL,
		problem_name TEXT,
		created_at   DATETIME NOT NULL,
		completed_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_name ON sessions(user_name);

	CREATE TABLE IF NOT EXISTS api_logs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT NOT NULL,
		endpoint      TEXT NOT NULL,
		request_body  TEXT NOT NULL,
		response_body TEXT NOT NULL,
		status_code   INTEGER NOT NULL,
		created_at    DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_logs_session ON api_logs(session_id);

	CREATE TABLE IF NOT EXISTS pending_requests (
		session_id   TEXT PRIMARY KEY,
		problem_name TEXT NOT NULL,
		created_at   DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: migrating schema: %w", err)
	}
	return nil
}

// Lock enters the critical section guarding the single-active-session
// invariant. Callers must defer Unlock.
func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_name, status, problem_name, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.SessionID, nullableString(sess.UserName), string(sess.Status),
		nullableString(sess.ProblemName), sess.CreatedAt, sess.CompletedAt)
	if err != nil {
		return fmt.Errorf("store: creating session %s: %w", sess.SessionID, err)
	}
	return nil
}

// ActiveSession returns the current active session, or (nil, nil) if
// none exists. The single-active-session invariant means there is at
// most one such row at any time.
func (s *Store) ActiveSession(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, status, problem_name, created_at, completed_at
		 FROM sessions WHERE status = ? LIMIT 1`, string(StatusActive))
	return scanOptionalSession(row)
}

// GetSession fetches a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, status, problem_name, created_at, completed_at
		 FROM sessions WHERE session_id = ?`, id)
	return scanOptionalSession(row)
}

// GetSessionByUserName fetches userName's active session, or (nil, nil)
// if they have none. Used to resolve a session_ref that is a bare name
// rather than an id: explicit ids always win, this is the fallback, and
// a user_name ref always means "whichever session of mine is active" —
// not whatever session of theirs was created most recently, active or
// not.
func (s *Store) GetSessionByUserName(ctx context.Context, userName string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, status, problem_name, created_at, completed_at
		 FROM sessions WHERE user_name = ? AND status = ? ORDER BY created_at DESC LIMIT 1`,
		userName, string(StatusActive))
	return scanOptionalSession(row)
}

// ListSessions returns every session, most recently created first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_name, status, problem_name, created_at, completed_at
		 FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a session to a new status, stamping
// completed_at when moving into a terminal state.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, completed_at = ? WHERE session_id = ?`,
		string(status), completedAt, id)
	if err != nil {
		return fmt.Errorf("store: updating session %s: %w", id, err)
	}
	return nil
}

// SetProblemName records the problem a promoted pending session was
// given, once it is activated.
func (s *Store) SetProblemName(ctx context.Context, id, problemName string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET problem_name = ? WHERE session_id = ?`, problemName, id)
	if err != nil {
		return fmt.Errorf("store: setting problem name for %s: %w", id, err)
	}
	return nil
}

// InsertAPILog appends one upstream-call record.
func (s *Store) InsertAPILog(ctx context.Context, log APILog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_logs (session_id, endpoint, request_body, response_body, status_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.SessionID, log.Endpoint, log.RequestBody, log.ResponseBody, log.StatusCode, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: inserting api log for %s: %w", log.SessionID, err)
	}
	return nil
}

// APILogsForSession returns the call log for a session in call order,
// used by the export endpoint.
func (s *Store) APILogsForSession(ctx context.Context, sessionID string) ([]APILog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, endpoint, request_body, response_body, status_code, created_at
		 FROM api_logs WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: listing api logs for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []APILog
	for rows.Next() {
		var l APILog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Endpoint, &l.RequestBody, &l.ResponseBody, &l.StatusCode, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning api log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// EnqueuePending adds a session to the FIFO pending queue.
func (s *Store) EnqueuePending(ctx context.Context, pr PendingRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_requests (session_id, problem_name, created_at) VALUES (?, ?, ?)`,
		pr.SessionID, pr.ProblemName, pr.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: enqueuing %s: %w", pr.SessionID, err)
	}
	return nil
}

// OldestPending returns the head of the FIFO pending queue, or
// (nil, nil) if the queue is empty.
func (s *Store) OldestPending(ctx context.Context) (*PendingRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, problem_name, created_at FROM pending_requests ORDER BY created_at ASC LIMIT 1`)
	var pr PendingRequest
	err := row.Scan(&pr.SessionID, &pr.ProblemName, &pr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading oldest pending: %w", err)
	}
	return &pr, nil
}

// DequeuePending removes a session from the pending queue once it has
// been promoted to active.
func (s *Store) DequeuePending(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_requests WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("store: dequeuing %s: %w", sessionID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var sess Session
	var userName, problemName sql.NullString
	var completedAt sql.NullTime
	if err := r.Scan(&sess.SessionID, &userName, &sess.Status, &problemName, &sess.CreatedAt, &completedAt); err != nil {
		return Session{}, err
	}
	sess.UserName = userName.String
	sess.ProblemName = problemName.String
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	return sess, nil
}

func scanOptionalSession(row *sql.Row) (*Session, error) {
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: scanning session: %w", err)
	}
	return &sess, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
