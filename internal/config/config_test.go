package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jobdesk/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantToken := filepath.Join(tempHome, ".local", "share", "jobdesk", "admin_token")
	if cfg.Session.TokenPath != wantToken {
		t.Fatalf("unexpected token path: got %q want %q", cfg.Session.TokenPath, wantToken)
	}
	if cfg.API.BaseURL != "https://api.closeuplovetunes.in" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.Jobs.PageSize != 20 {
		t.Fatalf("expected default page size 20, got %d", cfg.Jobs.PageSize)
	}
	if cfg.Reports.StartDate != "2026-01-01" {
		t.Fatalf("unexpected report start date: %q", cfg.Reports.StartDate)
	}
	if cfg.Reports.TrendMode != "day" {
		t.Fatalf("unexpected trend mode: %q", cfg.Reports.TrendMode)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	configPath := filepath.Join(tempHome, "config.toml")
	payload := struct {
		API struct {
			BaseURL        string `toml:"base_url"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"api"`
		Jobs struct {
			PageSize int `toml:"page_size"`
		} `toml:"jobs"`
		Reports struct {
			TrendMode string `toml:"trend_mode"`
			ExportDir string `toml:"export_dir"`
		} `toml:"reports"`
	}{}
	payload.API.BaseURL = "http://localhost:8000/"
	payload.API.TimeoutSeconds = 5
	payload.Jobs.PageSize = 50
	payload.Reports.TrendMode = "WEEK"
	payload.Reports.ExportDir = "~/exports"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout().Seconds() != 5 {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.Jobs.PageSize != 50 {
		t.Fatalf("unexpected page size: %d", cfg.Jobs.PageSize)
	}
	if cfg.Reports.TrendMode != "week" {
		t.Fatalf("expected lower-cased trend mode, got %q", cfg.Reports.TrendMode)
	}
	if cfg.Reports.ExportDir != filepath.Join(tempHome, "exports") {
		t.Fatalf("unexpected export dir: %q", cfg.Reports.ExportDir)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workdir := t.TempDir()
	chdir(t, workdir)
	os.Unsetenv("JOBDESK_API_URL")
	t.Cleanup(func() { os.Unsetenv("JOBDESK_API_URL") })

	if err := os.WriteFile(filepath.Join(workdir, ".env"), []byte("JOBDESK_API_URL=http://staging.local:9000\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://staging.local:9000" {
		t.Fatalf("expected base url from .env, got %q", cfg.API.BaseURL)
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("JOBDESK_API_URL", "https://admin.example.test")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://admin.example.test" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"page size", func(c *config.Config) { c.Jobs.PageSize = 25 }, "jobs.page_size"},
		{"scheme", func(c *config.Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"start date", func(c *config.Config) { c.Reports.StartDate = "01/02/2026" }, "reports.start_date"},
		{"range order", func(c *config.Config) {
			c.Reports.StartDate = "2026-03-01"
			c.Reports.EndDate = "2026-02-01"
		}, "reports.end_date"},
		{"trend mode", func(c *config.Config) { c.Reports.TrendMode = "month" }, "reports.trend_mode"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Jobs.PageSize != 20 {
		t.Fatalf("unexpected page size from sample: %d", cfg.Jobs.PageSize)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if filepath.IsAbs(dir) {
		t.Setenv("PWD", dir)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testing.Chdir: " + err.Error())
		}
	})
}
