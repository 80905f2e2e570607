package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE test_table (id INTEGER PRIMARY KEY, value TEXT)`)
	if err != nil {
		db.Close()
		t.Fatalf("failed to create table: %v", err)
	}

	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM test_table`).Scan(&n); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return n
}

func TestWithTx_Success(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if n := count(t, db); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n := count(t, db); n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestWithTx_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(*sql.Tx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Error("fn must not run without a transaction")
	}
}

func TestAffected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	notFound := fmt.Errorf("missing")
	res, err := db.Exec(`UPDATE test_table SET value = 'x' WHERE id = 42`)
	if err != nil {
		t.Fatal(err)
	}
	if err := Affected(res, notFound); !errors.Is(err, notFound) {
		t.Errorf("Affected = %v, want notFound", err)
	}

	if _, err := db.Exec(`INSERT INTO test_table (id, value) VALUES (42, 'a')`); err != nil {
		t.Fatal(err)
	}
	res, err = db.Exec(`UPDATE test_table SET value = 'x' WHERE id = 42`)
	if err != nil {
		t.Fatal(err)
	}
	if err := Affected(res, notFound); err != nil {
		t.Errorf("Affected = %v, want nil", err)
	}
}

func TestIsNoRows(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var v string
	err := db.QueryRow(`SELECT value FROM test_table WHERE id = 1`).Scan(&v)
	if !IsNoRows(err) {
		t.Errorf("IsNoRows(%v) = false", err)
	}
	if IsNoRows(fmt.Errorf("wrapped: %w", sql.ErrNoRows)) != true {
		t.Error("wrapped ErrNoRows not detected")
	}
	if IsNoRows(nil) {
		t.Error("IsNoRows(nil) = true")
	}
}
