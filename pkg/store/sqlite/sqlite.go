// Package sqlite implements pkg/store.Store on top of a sqlite
// database opened in WAL mode, so concurrent CLI invocations against
// the same --db file don't corrupt each other mid-write.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Krakalus/ledger/pkg/logentry"
	"github.com/Krakalus/ledger/pkg/store"
)

// Store persists messages in a single sqlite table keyed by
// (session_id, seq).
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path in
// WAL mode and runs its migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open *sql.DB, running the migration against it.
// Used by tests that want to drive the schema against an in-memory or
// sqlmock-backed connection.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS messages (
        session_id TEXT NOT NULL,
        seq        INTEGER NOT NULL,
        timestamp  TEXT NOT NULL,
        role       TEXT NOT NULL,
        agent_id   TEXT NOT NULL,
        content    TEXT NOT NULL,
        prev_hash  TEXT NOT NULL,
        scheme     TEXT NOT NULL,
        public_key TEXT NOT NULL,
        signature  TEXT NOT NULL,
        PRIMARY KEY (session_id, seq)
    );`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	labelsQuery := `
    CREATE TABLE IF NOT EXISTS session_labels (
        session_id TEXT PRIMARY KEY,
        label      TEXT NOT NULL
    );`
	if _, err := s.db.ExecContext(context.Background(), labelsQuery); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// SetLabel attaches a display-only label to sessionID, overwriting any
// prior one. It has no effect on Put/GetChain/verification.
func (s *Store) SetLabel(ctx context.Context, sessionID, label string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO session_labels (session_id, label) VALUES (?, ?)
        ON CONFLICT(session_id) DO UPDATE SET label = excluded.label`,
		sessionID, label)
	if err != nil {
		return fmt.Errorf("sqlite: set label: %w", err)
	}
	return nil
}

// GetLabel returns sessionID's label, or "" if none was set.
func (s *Store) GetLabel(ctx context.Context, sessionID string) (string, error) {
	var label string
	err := s.db.QueryRowContext(ctx, `SELECT label FROM session_labels WHERE session_id = ?`, sessionID).Scan(&label)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: get label: %w", err)
	}
	return label, nil
}

// Put inserts m. Re-putting an identical (session_id, seq) row is a
// no-op; re-putting a different one at the same key fails with
// store.ErrSeqConflict.
func (s *Store) Put(ctx context.Context, m logentry.Message) error {
	existing, err := s.getOne(ctx, m.SessionID, m.Seq)
	if err != nil {
		return err
	}
	if existing != nil {
		if messagesEqual(*existing, m) {
			return nil
		}
		return store.ErrSeqConflict
	}

	query := `INSERT INTO messages (
        session_id, seq, timestamp, role, agent_id, content, prev_hash, scheme, public_key, signature
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		m.SessionID, m.Seq, m.Timestamp, m.Role, m.AgentID, m.Content, m.PrevHash, m.Scheme, m.PublicKey, m.Signature,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert message: %w", err)
	}
	return nil
}

// ListSessions returns every distinct session_id, sorted ascending.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM messages ORDER BY session_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetChain returns the seq-ordered message chain for sessionID.
func (s *Store) GetChain(ctx context.Context, sessionID string) ([]logentry.Message, error) {
	query := `
        SELECT session_id, seq, timestamp, role, agent_id, content, prev_hash, scheme, public_key, signature
        FROM messages WHERE session_id = ? ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get chain: %w", err)
	}
	defer rows.Close()

	var chain []logentry.Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		chain = append(chain, m)
	}
	return chain, rows.Err()
}

func (s *Store) getOne(ctx context.Context, sessionID string, seq int64) (*logentry.Message, error) {
	query := `
        SELECT session_id, seq, timestamp, role, agent_id, content, prev_hash, scheme, public_key, signature
        FROM messages WHERE session_id = ? AND seq = ?`
	row := s.db.QueryRowContext(ctx, query, sessionID, seq)
	m, err := scanMessageRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get one: %w", err)
	}
	return &m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessageRow(row scanner) (logentry.Message, error) {
	var m logentry.Message
	err := row.Scan(&m.SessionID, &m.Seq, &m.Timestamp, &m.Role, &m.AgentID, &m.Content, &m.PrevHash, &m.Scheme, &m.PublicKey, &m.Signature)
	return m, err
}

func messagesEqual(a, b logentry.Message) bool {
	return a.SessionID == b.SessionID &&
		a.Seq == b.Seq &&
		a.Timestamp == b.Timestamp &&
		a.Role == b.Role &&
		a.AgentID == b.AgentID &&
		a.Content == b.Content &&
		a.PrevHash == b.PrevHash &&
		a.Scheme == b.Scheme &&
		a.PublicKey == b.PublicKey &&
		a.Signature == b.Signature
}
