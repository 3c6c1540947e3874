package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_admin      INTEGER NOT NULL DEFAULT 0,
	progress      TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);`

// SQLite is a single-file store for local play.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

const sqliteSelect = `SELECT id, username, password_hash, is_admin, progress, created_at, updated_at FROM players`

func (s *SQLite) Load(ctx context.Context, username string) (Account, error) {
	a, err := scanSQLite(s.DB.QueryRowContext(ctx, sqliteSelect+` WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (s *SQLite) Create(ctx context.Context, acct Account) error {
	progress, err := json.Marshal(acct.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	now := time.Now().UnixMilli()
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, is_admin, progress, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
		acct.ID, acct.Username, acct.PasswordHash, acct.IsAdmin, string(progress), now, now)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

func (s *SQLite) SaveAll(ctx context.Context, accts []Account) error {
	if len(accts) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO players (id, username, password_hash, is_admin, progress, created_at, updated_at)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(username) DO UPDATE SET progress = excluded.progress, is_admin = excluded.is_admin, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, a := range accts {
		progress, err := json.Marshal(a.Progress)
		if err != nil {
			return fmt.Errorf("encode progress for %s: %w", a.Username, err)
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Username, a.PasswordHash, a.IsAdmin, string(progress), now, now); err != nil {
			return fmt.Errorf("save %s: %w", a.Username, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) List(ctx context.Context) ([]Account, error) {
	rows, err := s.DB.QueryContext(ctx, sqliteSelect+` ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		a, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (Account, error) {
	var (
		a                Account
		progress         string
		created, updated int64
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsAdmin, &progress, &created, &updated); err != nil {
		return Account{}, err
	}
	if err := json.Unmarshal([]byte(progress), &a.Progress); err != nil {
		return Account{}, fmt.Errorf("decode progress for %s: %w", a.Username, err)
	}
	a.CreatedAt = time.UnixMilli(created)
	a.UpdatedAt = time.UnixMilli(updated)
	return a, nil
}
