package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/runger/dorg/internal/feedback"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends attempt records to a SQLite table. It satisfies
// the same append-only contract as the CSV backend: one row per record,
// rows are never updated or deleted. Each INSERT is atomic, which gives
// the required row-level atomicity under concurrent sessions.
type SQLiteRecorder struct {
	mu        sync.Mutex
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS naming_attempts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL,
  session_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  source_path TEXT NOT NULL,
  generated_name TEXT NOT NULL,
  generated_name_length INTEGER NOT NULL,
  optimal_parent_path TEXT NOT NULL,
  user_action TEXT NOT NULL,
  user_feedback TEXT NOT NULL,
  final_destination TEXT NOT NULL,
  files_analyzed INTEGER NOT NULL,
  has_audio_files TEXT NOT NULL,
  source_is_news_transcript TEXT NOT NULL,
  content_type_prefix TEXT NOT NULL,
  feedback_length INTEGER NOT NULL,
  feedback_categories TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_naming_attempts_session
  ON naming_attempts(session_id, attempt_number);
CREATE INDEX IF NOT EXISTS idx_naming_attempts_action
  ON naming_attempts(user_action);
`

// NewSQLiteRecorder opens (or creates) the log database at dbPath.
// WAL mode keeps concurrent session writers from blocking readers.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open log database: %w", err)
	}

	// SQLite handles concurrency better with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to log database: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create log schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

// Append inserts one attempt row.
func (r *SQLiteRecorder) Append(a *Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
		INSERT INTO naming_attempts (
			timestamp, session_id, attempt_number, source_path,
			generated_name, generated_name_length, optimal_parent_path,
			user_action, user_feedback, final_destination, files_analyzed,
			has_audio_files, source_is_news_transcript, content_type_prefix,
			feedback_length, feedback_categories
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.Timestamp.Format(TimestampLayout),
		a.SessionID,
		a.AttemptNumber,
		a.SourcePath,
		a.GeneratedName,
		a.GeneratedNameLength(),
		a.OptimalParentPath,
		string(a.UserAction),
		a.UserFeedback,
		a.FinalDestination,
		a.FilesAnalyzed,
		yesNo(a.HasAudioFiles),
		yesNo(a.NewsTranscript),
		a.ContentTypePrefix(),
		a.FeedbackLength(),
		feedback.Join(a.FeedbackCategories),
	)
	if err != nil {
		return fmt.Errorf("failed to append log row: %w", err)
	}
	return nil
}

// ReadAll returns every recorded attempt in insertion order.
func (r *SQLiteRecorder) ReadAll() ([]Attempt, error) {
	rows, err := r.db.Query(`
		SELECT timestamp, session_id, attempt_number, source_path,
		       generated_name, optimal_parent_path, user_action,
		       user_feedback, final_destination, files_analyzed,
		       has_audio_files, source_is_news_transcript,
		       feedback_categories
		FROM naming_attempts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query log: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var ts, audio, news, cats string
		err := rows.Scan(
			&ts, &a.SessionID, &a.AttemptNumber, &a.SourcePath,
			&a.GeneratedName, &a.OptimalParentPath, (*string)(&a.UserAction),
			&a.UserFeedback, &a.FinalDestination, &a.FilesAnalyzed,
			&audio, &news, &cats,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		a.Timestamp, err = time.ParseInLocation(TimestampLayout, ts, time.Local)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		a.HasAudioFiles = audio == "yes"
		a.NewsTranscript = news == "yes"
		a.FeedbackCategories = feedback.Split(cats)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log rows: %w", err)
	}
	return attempts, nil
}

// Close closes the database connection.
// It is safe to call Close multiple times.
func (r *SQLiteRecorder) Close() error {
	r.closeOnce.Do(func() {
		if r.db != nil {
			_, _ = r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			r.closeErr = r.db.Close()
		}
	})
	return r.closeErr
}
