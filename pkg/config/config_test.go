package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name         string
		envVars      map[string]string
		expectedPort  string
		expectedTimer int
	}{
		{
			name:          "default port when PORT not set",
			envVars:       map[string]string{},
			expectedPort:  "8000",
			expectedTimer: 3600,
		},
		{
			name:          "uses PORT env var when set",
			envVars:       map[string]string{"PORT": "3000"},
			expectedPort:  "3000",
			expectedTimer: 3600,
		},
		{
			name:          "default refresh timer when not set",
			envVars:       map[string]string{},
			expectedPort:  "8000",
			expectedTimer: 3600,
		},
		{
			name:          "uses REFRESH_TIMER env var when set",
			envVars:       map[string]string{"REFRESH_TIMER": "120"},
			expectedPort:  "8000",
			expectedTimer: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()
		
			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v", err)
			}

			if cfg.Server.Port != tt.expectedPort {
				t.Errorf("Port = %v, want %v", cfg.Server.Port, tt.expectedPort)
			}

			if cfg.Server.RefreshTimer != tt.expectedTimer {
				t.Errorf("RefreshTimer = %v, want %v", cfg.Server.RefreshTimer, tt.expectedTimer)
			}
		})
	}
}

func TestLoadFromEnv_ParsesRefreshTimerAsInt(t *testing.T) {
	os.Clearenv()
	os.Setenv("REFRESH_TIMER", "300")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Server.RefreshTimer != 300 {
		t.Errorf("RefreshTimer = %v, want %v", cfg.Server.RefreshTimer, 300)
	}
}

func TestLoadFromEnv_InvalidRefreshTimer(t *testing.T) {
	os.Clearenv()
	os.Setenv("REFRESH_TIMER", "not-a-number")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	// Should use default value when parsing fails
	if cfg.Server.RefreshTimer != 3600 {
		t.Errorf("RefreshTimer = %v, want %v (default)", cfg.Server.RefreshTimer, 3600)
	}
}

var (
	validCatalog = CatalogConfig{FeedURL: "https://books.example.com/opds", BaseURL: "https://books.example.com"}
	validLog     = LogConfig{Level: "info"}
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Server: ServerConfig{
					Port:         "8000",
					RefreshTimer: 60,
					RateLimit:    10,
					RateBurst:    20,
				},
				Cache: CacheConfig{
					Type: "memory",
				},
				Catalog: validCatalog,
				Log:     validLog,
			},
			wantErr: false,
		},
		{
			name: "empty port",
			config: Config{
				Server: ServerConfig{
					Port:         "",
					RefreshTimer: 60,
					RateLimit:    10,
					RateBurst:    20,
				},
				Cache: CacheConfig{
					Type: "memory",
				},
				Catalog: validCatalog,
				Log:     validLog,
			},
			wantErr: true,
			errMsg:  "port cannot be empty",
		},
		{
			name: "refresh timer less than 1",
			config: Config{
				Server: ServerConfig{
					Port:         "8000",
					RefreshTimer: 0,
					RateLimit:    10,
					RateBurst:    20,
				},
				Cache: CacheConfig{
					Type: "memory",
				},
				Catalog: validCatalog,
				Log:     validLog,
			},
			wantErr: true,
			errMsg:  "refresh timer must be at least 1 second",
		},
		{
			name: "invalid cache type",
			config: Config{
				Server: ServerConfig{
					Port:         "8000",
					RefreshTimer: 60,
					RateLimit:    10,
					RateBurst:    20,
				},
				Cache: CacheConfig{
					Type: "invalid",
				},
				Catalog: validCatalog,
				Log:     validLog,
			},
			wantErr: true,
			errMsg:  "cache type must be 'memory', 'redis' or 'sqlite'",
		},
		{
			name: "redis type with empty address",
			config: Config{
				Server: ServerConfig{
					Port:         "8000",
					RefreshTimer: 60,
					RateLimit:    10,
					RateBurst:    20,
				},
				Cache: CacheConfig{
					Type: "redis",
					Redis: RedisConfig{
						Address: "",
					},
				},
				Catalog: validCatalog,
				Log:     validLog,
			},
			wantErr: true,
			errMsg:  "redis address cannot be empty when using redis cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}
func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "8000", RefreshTimer: 60, RateLimit: 10, RateBurst: 20},
		Cache:   CacheConfig{Type: "memory"},
		Catalog: validCatalog,
		Log:     validLog,
	}
}

func TestConfig_Validate_CatalogAndLog(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"relative feed URL", func(c *Config) { c.Catalog.FeedURL = "/opds" }, "catalog feed URL must be an absolute URL"},
		{"bad proxy URL", func(c *Config) { c.Catalog.ProxyURL = "proxy" }, "catalog proxy URL must be an absolute URL"},
		{"negative cache TTL", func(c *Config) { c.Catalog.FeedCacheTTL = -1 }, "feed cache TTL cannot be negative"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "log level must be one of debug, info, warn, error"},
		{"sqlite without path", func(c *Config) { c.Cache.Type = "sqlite" }, "sqlite path cannot be empty when using sqlite cache"},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit = 0 }, "rate limit and burst must be positive"},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }, "trusted proxies must be IP addresses or CIDRs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil || err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %q", err, tt.errMsg)
			}
		})
	}
}

func TestConfig_Validate_SQLiteWithPath(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Type = "sqlite"
	cfg.Cache.SQLite.Path = "/tmp/bookshelf.db"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadFromEnv_CatalogDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("OPDS_FEED_URL", "https://books.example.com/opds/new")
	os.Setenv("OPDS_PROXY_URL", "https://proxy.example.com/api?url=")
	os.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Catalog.BaseURL != "https://books.example.com" {
		t.Errorf("BaseURL = %q, want feed origin", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.ProxyURL != "https://proxy.example.com/api?url=" {
		t.Errorf("ProxyURL = %q", cfg.Catalog.ProxyURL)
	}
	if cfg.Catalog.FeedCacheTTL != 300 {
		t.Errorf("FeedCacheTTL = %d, want 300", cfg.Catalog.FeedCacheTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=9999\nOPDS_FEED_URL=https://lib.example.org/opds\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Server.Port)
	}
	if cfg.Catalog.BaseURL != "https://lib.example.org" {
		t.Errorf("BaseURL = %q", cfg.Catalog.BaseURL)
	}
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	os.Clearenv()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Load() with missing file error = %v", err)
	}
}
