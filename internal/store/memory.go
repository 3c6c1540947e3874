package store

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemory() *Memory {
	return &Memory{accounts: map[string]Account{}}
}

func (m *Memory) Load(_ context.Context, username string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[username]
	if !ok {
		return Account{}, ErrNotFound
	}
	a.Progress = a.Progress.Clone()
	return a, nil
}

func (m *Memory) Create(_ context.Context, acct Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[acct.Username]; ok {
		return ErrAlreadyExists
	}
	now := time.Now()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
	}
	acct.UpdatedAt = now
	acct.Progress = acct.Progress.Clone()
	m.accounts[acct.Username] = acct
	return nil
}

func (m *Memory) SaveAll(_ context.Context, accts []Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, a := range accts {
		if prev, ok := m.accounts[a.Username]; ok && a.CreatedAt.IsZero() {
			a.CreatedAt = prev.CreatedAt
		}
		a.UpdatedAt = now
		a.Progress = a.Progress.Clone()
		m.accounts[a.Username] = a
	}
	return nil
}

func (m *Memory) List(_ context.Context) ([]Account, error) {
	m.mu.RLock()
	out := make([]Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		a.Progress = a.Progress.Clone()
		out = append(out, a)
	}
	m.mu.RUnlock()
	sortByUsername(out)
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
