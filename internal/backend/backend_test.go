package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dauvest/internal/config"
	"dauvest/internal/log"
	"dauvest/internal/storage"
)

func quietFactory() *Factory {
	return NewFactory(log.New(log.Config{Level: slog.LevelError, Output: io.Discard}))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory both", Config{Ledger: MemoryBackend, Social: MemoryBackend}, ""},
		{"sqlite needs path", Config{Ledger: SQLiteBackend, Social: MemoryBackend}, "SQLite database path"},
		{"postgres needs url", Config{Ledger: MemoryBackend, Social: PostgresBackend}, "database URL"},
		{"unknown ledger", Config{Ledger: "sheets", Social: MemoryBackend}, "invalid ledger backend"},
		{"unknown social", Config{Ledger: MemoryBackend, Social: "mysql"}, "invalid social backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config accepted")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", SocialBackend: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ledger != SQLiteBackend || cfg.Social != MemoryBackend || cfg.SQLiteDBPath != "x.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestCreateLedgerSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	res, err := quietFactory().CreateLedger(ctx, Config{Ledger: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateLedger: %v", err)
	}
	t.Cleanup(func() { _ = res.Cleanup() })

	if err := res.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := res.KV.Put(ctx, storage.KeyGoals, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestCreateMemoryBackends(t *testing.T) {
	ctx := context.Background()
	f := quietFactory()
	cfg := Config{Ledger: MemoryBackend, Social: MemoryBackend}

	ledgerRes, err := f.CreateLedger(ctx, cfg)
	if err != nil || ledgerRes.KV == nil {
		t.Fatalf("CreateLedger = %v, %v", ledgerRes, err)
	}
	socialRes, err := f.CreateSocial(ctx, cfg)
	if err != nil || socialRes.Store == nil {
		t.Fatalf("CreateSocial = %v, %v", socialRes, err)
	}
	if err := socialRes.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if _, err := f.CreateSocial(ctx, Config{Social: "mysql"}); err == nil {
		t.Error("unsupported social backend accepted")
	}
}

func TestCreateSocialPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	res, err := quietFactory().CreateSocial(ctx, Config{Social: PostgresBackend, DatabaseURL: dsn})
	if err != nil {
		t.Fatalf("CreateSocial: %v", err)
	}
	defer res.Cleanup()
	if err := res.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
