package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Postgres keeps one row per account with progress as JSONB.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

const selectAccount = `SELECT id, username, password_hash, is_admin, progress, created_at, updated_at FROM players`

func (s *Postgres) Load(ctx context.Context, username string) (Account, error) {
	row := s.Pool.QueryRow(ctx, selectAccount+` WHERE username = $1`, username)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return a, nil
}

func (s *Postgres) Create(ctx context.Context, acct Account) error {
	progress, err := json.Marshal(acct.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO players (id, username, password_hash, is_admin, progress) VALUES ($1,$2,$3,$4,$5)`,
		acct.ID, acct.Username, acct.PasswordHash, acct.IsAdmin, progress)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

// SaveAll upserts every account in one transaction.
func (s *Postgres) SaveAll(ctx context.Context, accts []Account) error {
	if len(accts) == 0 {
		return nil
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range accts {
		progress, err := json.Marshal(a.Progress)
		if err != nil {
			return fmt.Errorf("encode progress for %s: %w", a.Username, err)
		}
		batch.Queue(`INSERT INTO players (id, username, password_hash, is_admin, progress)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (username) DO UPDATE SET progress = EXCLUDED.progress, is_admin = EXCLUDED.is_admin, updated_at = now()`,
			a.ID, a.Username, a.PasswordHash, a.IsAdmin, progress)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) List(ctx context.Context) ([]Account, error) {
	rows, err := s.Pool.Query(ctx, selectAccount+` ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var progress []byte
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsAdmin, &progress, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	if err := json.Unmarshal(progress, &a.Progress); err != nil {
		return Account{}, fmt.Errorf("decode progress for %s: %w", a.Username, err)
	}
	return a, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
