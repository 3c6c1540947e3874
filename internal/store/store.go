package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"neon-tycoon/internal/progression"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Account struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	PasswordHash string               `json:"password_hash"`
	IsAdmin      bool                 `json:"is_admin"`
	Progress     progression.Progress `json:"progress"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Repository persists accounts. Writes are best-effort; callers retry on
// the next save cycle.
type Repository interface {
	Load(ctx context.Context, username string) (Account, error)
	Create(ctx context.Context, acct Account) error
	SaveAll(ctx context.Context, accts []Account) error
	List(ctx context.Context) ([]Account, error)
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Driver      string
	PostgresDSN string
	SQLitePath  string
	SupabaseURL string
	SupabaseKey string
}

func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return NewPostgres(ctx, opts.PostgresDSN)
	case "sqlite":
		return NewSQLite(opts.SQLitePath)
	case "supabase":
		return NewSupabase(opts.SupabaseURL, opts.SupabaseKey)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func HashPassword(password string) string {
	h := sha256.Sum256([]byte(password))
	return hex.EncodeToString(h[:])
}

func sortByUsername(accts []Account) {
	sort.Slice(accts, func(i, j int) bool { return accts[i].Username < accts[j].Username })
}
