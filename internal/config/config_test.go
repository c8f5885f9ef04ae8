package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "LOG_FORMAT", "CORS_ORIGINS", "AUTO_MIGRATE", "DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("port: got %q, want 8081", cfg.Port)
	}
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("page sizes: got %d/%d, want 20/100", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
	if cfg.AutoMigrate {
		t.Error("auto migrate should default to false")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("DEFAULT_PAGE_SIZE", "50")
	t.Setenv("MAX_PAGE_SIZE", "nope")
	t.Setenv("CORS_ORIGINS", "https://admin.example.com, https://stg-admin.example.com,")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if !cfg.AutoMigrate {
		t.Error("expected auto migrate")
	}
	if cfg.DefaultPageSize != 50 {
		t.Errorf("default page size: got %d", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("invalid max page size should fall back, got %d", cfg.MaxPageSize)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://stg-admin.example.com" {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
}
