package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFingerprintStable(t *testing.T) {
	url := "https://blog.example.com/posts/hello-world"
	if Fingerprint(url) != Fingerprint(url) {
		t.Error("expected same URL to yield same fingerprint")
	}
}

func TestFingerprintDistinct(t *testing.T) {
	a := Fingerprint("https://blog.example.com/posts/a")
	b := Fingerprint("https://blog.example.com/posts/b")
	if a == b {
		t.Errorf("expected distinct fingerprints, both were %s", a)
	}
}

func TestFingerprintIndependentOfContent(t *testing.T) {
	// The fingerprint is derived from the URL only; a changed title or
	// body must not produce a new key.
	fp := Fingerprint("https://blog.example.com/posts/a")
	if len(fp) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(fp))
	}
}

func testRecord(title string) Record {
	return Record{
		SourceURL: "https://blog.example.com/posts/" + title,
		Title:     title,
		PostedAt:  time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		StyleTag:  "question_interrupt",
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	fp := Fingerprint("https://blog.example.com/posts/a")
	if s.Has(fp) {
		t.Error("empty store should not have fingerprint")
	}

	if err := s.Record(fp, testRecord("a")); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !s.Has(fp) {
		t.Error("expected fingerprint after record")
	}

	// Durability across reopen.
	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	if !reopened.Has(fp) {
		t.Error("expected fingerprint to survive reopen")
	}
	all := reopened.LoadAll()
	if got := all[fp].Title; got != "a" {
		t.Errorf("expected title 'a', got %q", got)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "nope", "posted.json"))
	if err != nil {
		t.Fatalf("missing file should open as empty store: %v", err)
	}
	if len(s.LoadAll()) != 0 {
		t.Error("expected empty store")
	}
}

func TestFileStoreCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Error("expected error opening corrupt store")
	}
}

func TestFileStoreRewriteKeepsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	fpA := Fingerprint("https://blog.example.com/posts/a")
	fpB := Fingerprint("https://blog.example.com/posts/b")
	if err := s.Record(fpA, testRecord("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(fpB, testRecord("b")); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Has(fpA) || !reopened.Has(fpB) {
		t.Error("expected both entries after second commit")
	}
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFile(filepath.Join(dir, "posted.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(Fingerprint("https://a"), testRecord("a")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the store file, found %v", names)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "autopost.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	fp := Fingerprint("https://blog.example.com/posts/a")
	if s.Has(fp) {
		t.Error("empty store should not have fingerprint")
	}

	rec := testRecord("a")
	rec.CommentMissing = true
	if err := s.Record(fp, rec); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !s.Has(fp) {
		t.Error("expected fingerprint after record")
	}

	all := s.LoadAll()
	got, ok := all[fp]
	if !ok {
		t.Fatal("expected record in LoadAll")
	}
	if got.Title != "a" || got.StyleTag != "question_interrupt" {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.CommentMissing {
		t.Error("expected comment_missing flag to persist")
	}
	if !got.PostedAt.Equal(rec.PostedAt) {
		t.Errorf("expected posted_at %v, got %v", rec.PostedAt, got.PostedAt)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "autopost.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	fp := Fingerprint("https://blog.example.com/posts/a")
	if err := s.Record(fp, testRecord("a")); err != nil {
		t.Fatal(err)
	}
	updated := testRecord("a-updated")
	if err := s.Record(fp, updated); err != nil {
		t.Fatal(err)
	}

	all := s.LoadAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(all))
	}
	if all[fp].Title != "a-updated" {
		t.Errorf("expected updated title, got %q", all[fp].Title)
	}
}

func TestOpenDispatch(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := Open("file", filepath.Join(dir, "posted.json"))
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	if _, ok := fileStore.(*FileStore); !ok {
		t.Errorf("expected *FileStore, got %T", fileStore)
	}

	sqliteStore, err := Open("sqlite", filepath.Join(dir, "autopost.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })
	if _, ok := sqliteStore.(*SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore, got %T", sqliteStore)
	}
}
