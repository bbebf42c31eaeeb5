package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const publicationsSchema = `
CREATE TABLE IF NOT EXISTS publications (
	fingerprint TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	posted_at TEXT NOT NULL,
	variant_used TEXT NOT NULL,
	comment_missing INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore keeps publication records in a SQLite database. It satisfies
// the same contract as FileStore; each Record is one transactional upsert.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at dbPath and ensures the
// publications table exists.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := conn.Exec(publicationsSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating publications table: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

// Has reports whether a publication record exists for the fingerprint.
func (s *SQLiteStore) Has(fingerprint string) bool {
	var one int
	err := s.conn.QueryRow(
		`SELECT 1 FROM publications WHERE fingerprint = ?`, fingerprint,
	).Scan(&one)
	return err == nil
}

// Record upserts one publication record by fingerprint.
func (s *SQLiteStore) Record(fingerprint string, rec Record) error {
	_, err := s.conn.Exec(
		`INSERT INTO publications (fingerprint, url, title, posted_at, variant_used, comment_missing)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			posted_at = excluded.posted_at,
			variant_used = excluded.variant_used,
			comment_missing = excluded.comment_missing`,
		fingerprint, rec.SourceURL, rec.Title,
		rec.PostedAt.UTC().Format(time.RFC3339), rec.StyleTag, boolToInt(rec.CommentMissing),
	)
	if err != nil {
		return fmt.Errorf("recording publication: %w", err)
	}
	return nil
}

// LoadAll returns every stored record keyed by fingerprint.
func (s *SQLiteStore) LoadAll() map[string]Record {
	out := make(map[string]Record)

	rows, err := s.conn.Query(
		`SELECT fingerprint, url, title, posted_at, variant_used, comment_missing FROM publications`,
	)
	if err != nil {
		log.Printf("Error loading publications: %v", err)
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var fp, postedAt string
		var rec Record
		var commentMissing int
		if err := rows.Scan(&fp, &rec.SourceURL, &rec.Title, &postedAt, &rec.StyleTag, &commentMissing); err != nil {
			log.Printf("Error scanning publication row: %v", err)
			continue
		}
		rec.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
		rec.CommentMissing = commentMissing != 0
		out[fp] = rec
	}
	return out
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
