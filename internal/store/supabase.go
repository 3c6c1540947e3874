package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"neon-tycoon/internal/progression"
)

const supabaseTable = "players"

// Supabase stores accounts through the PostgREST API of a Supabase
// project. The table layout matches migrations/000001_init.up.sql.
type Supabase struct {
	client *supa.Client
}

type supabaseRow struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	PasswordHash string               `json:"password_hash"`
	IsAdmin      bool                 `json:"is_admin"`
	Progress     progression.Progress `json:"progress"`
	CreatedAt    *time.Time           `json:"created_at,omitempty"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
}

func NewSupabase(url, key string) (*Supabase, error) {
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Supabase{client: client}, nil
}

func (s *Supabase) Load(_ context.Context, username string) (Account, error) {
	var rows []supabaseRow
	if _, err := s.client.From(supabaseTable).Select("*", "", false).Eq("username", username).ExecuteTo(&rows); err != nil {
		return Account{}, fmt.Errorf("load %s: %w", username, err)
	}
	if len(rows) == 0 {
		return Account{}, ErrNotFound
	}
	return rows[0].account(), nil
}

func (s *Supabase) Create(ctx context.Context, acct Account) error {
	if _, err := s.Load(ctx, acct.Username); err == nil {
		return ErrAlreadyExists
	}
	var inserted []supabaseRow
	_, err := s.client.From(supabaseTable).Insert(toSupabaseRow(acct), false, "", "", "").ExecuteTo(&inserted)
	if err != nil {
		if strings.Contains(err.Error(), pgUniqueViolation) || strings.Contains(err.Error(), "duplicate key") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create %s: %w", acct.Username, err)
	}
	return nil
}

func (s *Supabase) SaveAll(_ context.Context, accts []Account) error {
	if len(accts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]supabaseRow, 0, len(accts))
	for _, a := range accts {
		r := toSupabaseRow(a)
		r.UpdatedAt = &now
		rows = append(rows, r)
	}
	var saved []supabaseRow
	if _, err := s.client.From(supabaseTable).Insert(rows, true, "username", "", "").ExecuteTo(&saved); err != nil {
		return fmt.Errorf("save players: %w", err)
	}
	return nil
}

func (s *Supabase) List(_ context.Context) ([]Account, error) {
	var rows []supabaseRow
	if _, err := s.client.From(supabaseTable).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make([]Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.account())
	}
	sortByUsername(out)
	return out, nil
}

func (s *Supabase) Ping(_ context.Context) error {
	var rows []supabaseRow
	_, err := s.client.From(supabaseTable).Select("id", "", false).Limit(1, "").ExecuteTo(&rows)
	return err
}

func (s *Supabase) Close() error { return nil }

func toSupabaseRow(a Account) supabaseRow {
	return supabaseRow{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		IsAdmin:      a.IsAdmin,
		Progress:     a.Progress,
	}
}

func (r supabaseRow) account() Account {
	a := Account{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		Progress:     r.Progress,
	}
	if r.CreatedAt != nil {
		a.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		a.UpdatedAt = *r.UpdatedAt
	}
	return a
}
