package store

import (
	"context"
	"path/filepath"
	"testing"

	"neon-tycoon/internal/testutil"
)

func TestPostgresRepository(t *testing.T) {
	dsn := testutil.OpenTestSchema(t)
	repo, err := NewPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	exerciseRepository(t, repo)
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "tycoon.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	repo, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if _, ok := repo.(*Memory); !ok {
		t.Fatalf("default driver = %T, want *Memory", repo)
	}
}
