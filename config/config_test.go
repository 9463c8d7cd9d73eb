package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.JWT.Expiry != 360000*time.Second {
		t.Errorf("Expiry = %v, want 360000s", cfg.JWT.Expiry)
	}
	if cfg.Mongo.Database != "devconnector" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("GIN_MODE", "release")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.JWT.Expiry != time.Hour {
		t.Errorf("Expiry = %v, want 1h", cfg.JWT.Expiry)
	}
	if !cfg.Server.Release() {
		t.Error("expected release mode")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Mongo: MongoConfig{URI: "mongodb://localhost", Database: "db"},
		JWT:   JWTConfig{Secret: "s", Expiry: time.Hour},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"zero expiry", func(c *Config) { c.JWT.Expiry = 0 }, true},
		{"missing uri", func(c *Config) { c.Mongo.URI = "" }, true},
		{"missing database", func(c *Config) { c.Mongo.Database = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
