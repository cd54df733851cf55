package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobdesk/internal/config"
	"jobdesk/internal/jobs"
	"jobdesk/internal/session"
	"jobdesk/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	backend    *testsupport.Backend
	configPath string
	baseDir    string
}

// setupCLITestEnv starts a fake backend seeded with details, writes a config
// pointing at it, and stores the backend's token as the admin session.
func setupCLITestEnv(t *testing.T, details ...jobs.Detail) *cliTestEnv {
	t.Helper()

	fake := testsupport.NewBackend(t, details...)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(fake.URL()))
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("JOBDESK_API_URL", "")
	t.Setenv("JOBDESK_TOKEN_PATH", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{cfg: cfg, backend: fake, configPath: configPath, baseDir: base}
	env.login(t, testsupport.DefaultToken)
	return env
}

func (e *cliTestEnv) login(t *testing.T, token string) {
	t.Helper()
	if err := session.NewFileTokenStore(e.cfg.Session.TokenPath).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

func (e *cliTestEnv) storedToken(t *testing.T) string {
	t.Helper()
	token, err := session.NewFileTokenStore(e.cfg.Session.TokenPath).Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	return token
}

func runCLI(t *testing.T, configPath string, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[api]\nbase_url = %q\ntimeout_seconds = 5\n\n[session]\ntoken_path = %q\n\n[jobs]\npage_size = %d\n\n[reports]\nstart_date = %q\nexport_dir = %q\n\n[logging]\nfile = %q\n",
		cfg.API.BaseURL,
		cfg.Session.TokenPath,
		cfg.Jobs.PageSize,
		cfg.Reports.StartDate,
		cfg.Reports.ExportDir,
		cfg.Logging.File,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
