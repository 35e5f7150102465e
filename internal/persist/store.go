package persist

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperAligner/core/cas"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/sqlite"
	"github.com/FocuswithJustin/JuniperAligner/internal/persist/migrations"
)

// Store is the SQLite side of a project.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// BaselineRecord is the verse text an alignment was last validated against.
type BaselineRecord struct {
	Book        string
	Chapter     int
	Verse       int
	SourceText  string
	TargetText  string
	Fingerprint string
	UpdatedAt   time.Time
}

// JournalEntry is one applied operation.
type JournalEntry struct {
	ID        string
	SessionID string
	Book      string
	Chapter   int
	Verse     int
	Kind      string
	Payload   string
	CreatedAt time.Time
}

// SnapshotRecord names a chapter snapshot held in the content store.
type SnapshotRecord struct {
	Book      string
	Chapter   int
	Digest    cas.Digest
	CreatedAt time.Time
}

// OpenStore opens (creating if needed) the database at path and applies
// pending migrations. Use ":memory:" for a throwaway store.
func OpenStore(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs every embedded migration newer than the recorded version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, formatTime(s.now())); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Version returns the applied schema version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// SaveBaseline stores or replaces a verse baseline.
func (s *Store) SaveBaseline(ctx context.Context, b BaselineRecord) error {
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO baselines (book, chapter, verse, source_text, target_text, fingerprint, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book, chapter, verse) DO UPDATE SET
			source_text = excluded.source_text,
			target_text = excluded.target_text,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at
	`, strings.ToLower(b.Book), b.Chapter, b.Verse, b.SourceText, b.TargetText, b.Fingerprint, formatTime(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving baseline: %w", err)
	}
	return nil
}

// Baseline returns a verse baseline or a NotFoundError.
func (s *Store) Baseline(ctx context.Context, book string, chapter, verse int) (BaselineRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT book, chapter, verse, source_text, target_text, fingerprint, updated_at
		FROM baselines WHERE book = ? AND chapter = ? AND verse = ?
	`, strings.ToLower(book), chapter, verse)

	var b BaselineRecord
	var updated string
	err := row.Scan(&b.Book, &b.Chapter, &b.Verse, &b.SourceText, &b.TargetText, &b.Fingerprint, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return BaselineRecord{}, alerrors.NewNotFound("baseline", fmt.Sprintf("%s %d:%d", book, chapter, verse))
	}
	if err != nil {
		return BaselineRecord{}, fmt.Errorf("reading baseline: %w", err)
	}
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

// AppendJournal records an applied operation. A missing ID is generated.
func (s *Store) AppendJournal(ctx context.Context, e JournalEntry) (JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.Book = strings.ToLower(e.Book)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (id, session_id, book, chapter, verse, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SessionID, e.Book, e.Chapter, e.Verse, e.Kind, e.Payload, formatTime(e.CreatedAt))
	if err != nil {
		return JournalEntry{}, fmt.Errorf("appending journal: %w", err)
	}
	return e, nil
}

// Journal returns a verse's journal entries, oldest first.
func (s *Store) Journal(ctx context.Context, book string, chapter, verse int) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, book, chapter, verse, kind, payload, created_at
		FROM journal WHERE book = ? AND chapter = ? AND verse = ?
		ORDER BY created_at, rowid
	`, strings.ToLower(book), chapter, verse)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var created string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Book, &e.Chapter, &e.Verse, &e.Kind, &e.Payload, &created); err != nil {
			return nil, fmt.Errorf("scanning journal: %w", err)
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordSnapshot notes that a chapter snapshot was stored.
func (s *Store) RecordSnapshot(ctx context.Context, book string, chapter int, d cas.Digest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (book, chapter, sha256, blake3, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book, chapter, sha256) DO NOTHING
	`, strings.ToLower(book), chapter, d.SHA256, d.BLAKE3, formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("recording snapshot: %w", err)
	}
	return nil
}

// Snapshots lists a chapter's snapshots, newest first.
func (s *Store) Snapshots(ctx context.Context, book string, chapter int) ([]SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book, chapter, sha256, blake3, created_at
		FROM snapshots WHERE book = ? AND chapter = ?
		ORDER BY created_at DESC, rowid DESC
	`, strings.ToLower(book), chapter)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		var created string
		if err := rows.Scan(&r.Book, &r.Chapter, &r.Digest.SHA256, &r.Digest.BLAKE3, &created); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkNotice records that a notice was shown for a verse. It reports
// whether this is the first time.
func (s *Store) MarkNotice(ctx context.Context, book string, chapter, verse int, kind string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (book, chapter, verse, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book, chapter, verse, kind) DO NOTHING
	`, strings.ToLower(book), chapter, verse, kind, formatTime(s.now()))
	if err != nil {
		return false, fmt.Errorf("recording notice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
