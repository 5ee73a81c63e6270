// Package sqlitetest opens in-memory SQLite databases carrying the billing
// schema, for tests of code that runs against sqlx.
package sqlitetest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Schema mirrors scripts/init.sql. Decimals and dates are stored as text.
const Schema = `
CREATE TABLE sales (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	vehicle TEXT NOT NULL,
	price TEXT NOT NULL,
	down_payment TEXT NOT NULL,
	principal TEXT NOT NULL,
	annual_rate_percent TEXT NOT NULL,
	term_months INTEGER NOT NULL,
	start_date TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE sale_reinforcements (
	sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	month INTEGER NOT NULL,
	amount TEXT NOT NULL
);
CREATE TABLE installments (
	id TEXT PRIMARY KEY,
	sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	sequence_number INTEGER NOT NULL,
	due_date TEXT NOT NULL,
	principal TEXT NOT NULL,
	interest TEXT NOT NULL,
	reinforcement TEXT NOT NULL,
	amount TEXT NOT NULL,
	status TEXT NOT NULL,
	payment_date TEXT,
	partial_amount TEXT,
	created_at DATETIME NOT NULL,
	UNIQUE (sale_id, sequence_number)
);
CREATE TABLE payments (
	id TEXT PRIMARY KEY,
	sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	sequence_number INTEGER NOT NULL,
	amount TEXT NOT NULL,
	paid_on TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

// NewDB returns a fresh database that is closed when t finishes.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
