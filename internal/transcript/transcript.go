// Package transcript records completed exchanges to a local SQLite file.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"AskChat/internal/answer"
	"AskChat/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	start_time DATETIME,
	server_url TEXT
);
CREATE TABLE IF NOT EXISTS exchanges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	question TEXT,
	answer TEXT,
	matched_question TEXT,
	source TEXT,
	timestamp DATETIME,
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);`

// Store is a transcript bound to one session.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	session *session.Session
	mu      sync.Mutex
}

// Open opens (or creates) the database at path and registers sess in it.
// A nil sess opens the transcript for reading only.
func Open(ctx context.Context, path string, sess *session.Session, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if sess == nil {
		return openReadOnly(ctx, path, logger)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (id, start_time, server_url) VALUES (?, ?, ?)",
		sess.ID, sess.StartTime, sess.ServerURL,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("transcript opened", "path", path, "session_id", sess.ID)
	return &Store{db: db, logger: logger, session: sess}, nil
}

// openReadOnly never creates the file or its tables.
func openReadOnly(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}

	logger.Debug("transcript opened read-only", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// SessionID returns the ID exchanges are recorded under
func (s *Store) SessionID() string {
	if s.session == nil {
		return ""
	}
	return s.session.ID
}

// Record appends an exchange. Client-side error answers are skipped.
func (s *Store) Record(ctx context.Context, ex session.Exchange) error {
	if ex.Source == answer.SourceError {
		return nil
	}
	if s.session == nil {
		return fmt.Errorf("transcript is read-only")
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exchanges (session_id, question, answer, matched_question, source, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		s.session.ID, ex.Question, ex.Answer, ex.MatchedQuestion, string(ex.Source), ex.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	s.session.Exchanges = append(s.session.Exchanges, ex)

	s.logger.Debug("exchange recorded", "session_id", s.session.ID, "count", len(s.session.Exchanges))
	return nil
}

// Load reads a session and its exchanges in recording order.
func (s *Store) Load(ctx context.Context, sessionID string) (*session.Session, error) {
	var serverURL string
	var startTime time.Time

	err := s.db.QueryRowContext(ctx, "SELECT server_url, start_time FROM sessions WHERE id = ?", sessionID).
		Scan(&serverURL, &startTime)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT question, answer, matched_question, source, timestamp FROM exchanges WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := []session.Exchange{}
	for rows.Next() {
		var ex session.Exchange
		var source string
		if err := rows.Scan(&ex.Question, &ex.Answer, &ex.MatchedQuestion, &source, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.Source = answer.Source(source)
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return &session.Session{
		ID:        sessionID,
		StartTime: startTime,
		ServerURL: serverURL,
		Exchanges: exchanges,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
