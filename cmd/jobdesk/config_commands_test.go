package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobdesk/internal/config"
)

func TestConfigInitWritesSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "jobdesk.toml")

	out, _, err := runCLI(t, "", nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(data) != config.SampleConfig() {
		t.Fatal("expected embedded sample config")
	}

	_, _, err = runCLI(t, "", nil, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}
	if _, _, err := runCLI(t, "", nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Backend: "+env.backend.URL())
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[jobs]\npage_size = 25\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, bad, nil, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "jobs.page_size") {
		t.Fatalf("expected page size error, got %v", err)
	}
}

func TestConfigShowAppliesAPIOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "base_url = '"+env.backend.URL()+"'")
	requireContains(t, out, "page_size = 20")

	out, _, err = runCLI(t, env.configPath, nil, "--json", "--api-url", "https://staging.example.com/", "config", "show")
	if err != nil {
		t.Fatalf("config show --json: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode config: %v\n%s", err, out)
	}
	if cfg.API.BaseURL != "https://staging.example.com" {
		t.Fatalf("expected trimmed override, got %q", cfg.API.BaseURL)
	}

	if _, _, err := runCLI(t, env.configPath, nil, "--api-url", "ftp://example.com", "config", "show"); err == nil {
		t.Fatal("expected invalid --api-url to fail")
	}
}
