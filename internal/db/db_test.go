package db

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_SQLiteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: path}, io.Discard)
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	defer Close(d)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file at %s: %v", path, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"}, io.Discard)
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: DriverSQLite}, io.Discard); err == nil {
		t.Error("Open expected error for empty dsn")
	}
}

func TestExecScript(t *testing.T) {
	dir := t.TempDir()
	d, err := Open(context.Background(), Config{DSN: filepath.Join(dir, "test.db")}, io.Discard)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(d)

	script := filepath.Join(dir, "schema.sql")
	ddl := "CREATE TABLE IF NOT EXISTS a (id INTEGER);\nCREATE TABLE IF NOT EXISTS b (id INTEGER);\n"
	if err := os.WriteFile(script, []byte(ddl), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ExecScript(context.Background(), d, script); err != nil {
		t.Fatalf("ExecScript returned unexpected error: %v", err)
	}
	for _, table := range []string{"a", "b"} {
		if !d.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	// running twice is fine for IF NOT EXISTS scripts
	if err := ExecScript(context.Background(), d, script); err != nil {
		t.Errorf("second ExecScript: %v", err)
	}
}

func TestExecScript_Missing(t *testing.T) {
	d, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "test.db")}, io.Discard)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(d)

	if err := ExecScript(context.Background(), d, "/nonexistent/schema.sql"); err == nil {
		t.Error("ExecScript expected error for missing script")
	}
}
