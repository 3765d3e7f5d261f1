package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyRecordsAppliedMigrations(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_sessions.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE sessions(client_id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE sessions;"),
		},
		"002_consent.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE consent(client_id TEXT PRIMARY KEY);"),
		},
		"README.md": &fstest.MapFile{Data: []byte("not a migration")},
	}

	if err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 2 {
		t.Fatalf("expected 2 migration rows, got %d", got)
	}
	for _, table := range []string{"sessions", "consent"} {
		if !tableExists(t, db, table) {
			t.Fatalf("expected table %q", table)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_sessions.sql": &fstest.MapFile{Data: []byte("CREATE TABLE sessions(client_id TEXT PRIMARY KEY);")},
	}

	for i := 0; i < 2; i++ {
		if err := Apply(context.Background(), db, migrations, "."); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("expected single migration row after replay, got %d", got)
	}
}

func TestApplyDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("CREAT table things(id INT);")},
	}
	if err := Apply(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("expected failed migration to stay unrecorded, got %d rows", got)
	}
}

func TestApplyUsesDirInMigrationKey(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"sql/001_items.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	}

	if err := Apply(context.Background(), db, migrations, "sql"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&key); err != nil {
		t.Fatalf("read key: %v", err)
	}
	if key != "sql/001_items.sql" {
		t.Fatalf("key = %q, want sql/001_items.sql", key)
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(id INT);", want: "\nCREATE TABLE a(id INT);"},
		{name: "up and down", content: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := UpSection(tc.content); got != tc.want {
				t.Fatalf("UpSection() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if IsAlreadyExistsError(nil) {
		t.Fatal("nil must not be an already-exists error")
	}
	if !IsAlreadyExistsError(errors.New("table sessions already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("unexpected match")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return count
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("lookup table %q: %v", name, err)
	}
	return true
}
