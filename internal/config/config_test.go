package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory store", Config{Env: "development", Store: StoreMemory}, false},
		{"postgres with url", Config{Env: "development", Store: StorePostgres, DatabaseURL: "postgres://localhost/rlc"}, false},
		{"postgres without url", Config{Env: "development", Store: StorePostgres}, true},
		{"unknown store", Config{Env: "development", Store: "redis"}, true},
		{"production without signing key", Config{Env: "production", Store: StoreMemory}, true},
		{"production with signing key", Config{Env: "production", Store: StoreMemory, SessionSigningKey: "secret"}, false},
		{"sweep interval too small", Config{Env: "development", Store: StoreMemory, SweepInterval: time.Second}, true},
		{"sweep interval disabled", Config{Env: "development", Store: StoreMemory, SweepInterval: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port == "" {
		t.Error("expected default port")
	}
	if cfg.Store != StoreMemory {
		t.Errorf("store = %q, want default %q", cfg.Store, StoreMemory)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("session ttl = %v, want 12h", cfg.SessionTTL)
	}
}
