package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
	if cfg.AMQPExchange != "mpump" || cfg.AMQPQueue != "data_changes" {
		t.Errorf("AMQP defaults = %q/%q", cfg.AMQPExchange, cfg.AMQPQueue)
	}
	if cfg.BackupDebounce != 5*time.Second {
		t.Errorf("BackupDebounce = %v, want 5s", cfg.BackupDebounce)
	}
	if cfg.BackupCron != "0 0 * * *" {
		t.Errorf("BackupCron = %q", cfg.BackupCron)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("BACKUP_DEBOUNCE", "250ms")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.BackupDebounce != 250*time.Millisecond {
		t.Errorf("BackupDebounce = %v, want 250ms", cfg.BackupDebounce)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Load()
		cfg.SQLiteDBPath = "mpump.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://broker" }, "invalid AMQP URL scheme"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://broker"; c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"empty backup dir", func(c *Config) { c.BackupDir = "" }, "backup directory"},
		{"debounce too small", func(c *Config) { c.BackupDebounce = time.Millisecond }, "backup debounce"},
		{"debounce too large", func(c *Config) { c.BackupDebounce = 2 * time.Hour }, "backup debounce"},
		{"bad cron", func(c *Config) { c.BackupCron = "nightly" }, "backup cron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorker(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"sqlite with broker valid",
			func(c *Config) { c.DataBackend = "sqlite"; c.AMQPURL = "amqp://broker" },
			"",
		},
		{
			"memory backend rejected",
			func(c *Config) { c.DataBackend = "memory"; c.AMQPURL = "amqp://broker" },
			"requires DATA_BACKEND=sqlite",
		},
		{
			"missing broker rejected",
			func(c *Config) { c.DataBackend = "sqlite"; c.AMQPURL = "" },
			"AMQP_URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.ValidateWorker()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateWorker() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateWorker() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "abc"
	cfg.DataBackend = "postgres"
	cfg.BackupDir = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"invalid port", "invalid data backend", "backup directory"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}
