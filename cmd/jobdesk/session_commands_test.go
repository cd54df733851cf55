package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/session"
	"jobdesk/internal/testsupport"
)

func TestLoginStoresTokenFromFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env.configPath, nil, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, nil, "login", "--token", "  fresh-token  ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Admin session saved to "+env.cfg.Session.TokenPath)
	if got := env.storedToken(t); got != "fresh-token" {
		t.Fatalf("expected trimmed token, got %q", got)
	}
}

func TestLoginReadsPipedToken(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, strings.NewReader("\n  piped-token\n"), "login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := env.storedToken(t); got != "piped-token" {
		t.Fatalf("expected piped token, got %q", got)
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, strings.NewReader("\n\n"), "login")
	if err == nil || !strings.Contains(err.Error(), "no token provided") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if got := env.storedToken(t); got != testsupport.DefaultToken {
		t.Fatalf("expected previous token to survive, got %q", got)
	}
}

func TestLoginVerifyRejectedTokenIsDiscarded(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, nil, "login", "--token", "wrong-token", "--verify")
	if err == nil || !strings.Contains(err.Error(), "token rejected by backend") {
		t.Fatalf("expected rejection, got %v", err)
	}
	if got := env.storedToken(t); got != "" {
		t.Fatalf("expected rejected token to be cleared, got %q", got)
	}
}

func TestLoginVerifyAcceptedToken(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "login", "--token", testsupport.DefaultToken, "--verify")
	if err != nil {
		t.Fatalf("login --verify: %v", err)
	}
	requireContains(t, out, "Token verified against "+env.backend.URL())
	if env.backend.Count(testsupport.RouteList) != 1 {
		t.Fatalf("expected one verification request, got %d", env.backend.Count(testsupport.RouteList))
	}
}

func TestLogoutClearsToken(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	requireContains(t, out, "Logged out")
	if got := env.storedToken(t); got != "" {
		t.Fatalf("expected empty token after logout, got %q", got)
	}
}

func TestSessionStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "session", "status")
	if err != nil {
		t.Fatalf("session status: %v", err)
	}
	requireContains(t, out, "Token stored")
	requireContains(t, out, env.backend.URL())

	if _, _, err := runCLI(t, env.configPath, nil, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, nil, "session", "status")
	if err != nil {
		t.Fatalf("session status after logout: %v", err)
	}
	requireContains(t, out, "Not logged in; run 'jobdesk login'")
}

func TestSessionStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "--json", "session", "status")
	if err != nil {
		t.Fatalf("session status --json: %v", err)
	}
	var status sessionStatusJSON
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if !status.Active || status.TokenPath != env.cfg.Session.TokenPath {
		t.Fatalf("unexpected status %+v", status)
	}
	// The fake token is not a JWT, so no claims are reported.
	if status.Subject != "" || status.ExpiresAt != nil || status.Expired {
		t.Fatalf("expected no claims for opaque token, got %+v", status)
	}
}

func TestProtectedCommandsRequireSession(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(1, jobs.StatusQueued))
	if _, _, err := runCLI(t, env.configPath, nil, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	commands := [][]string{
		{"jobs", "list"},
		{"jobs", "show", "1"},
		{"jobs", "set-status", "1", "sent", "--yes"},
		{"jobs", "send-video", "1", "--yes"},
		{"reports", "stats"},
		{"reports", "export"},
		{"dashboard"},
	}
	for _, args := range commands {
		_, _, err := runCLI(t, env.configPath, nil, args...)
		if !errors.Is(err, session.ErrNoSession) {
			t.Fatalf("%v: expected ErrNoSession, got %v", args, err)
		}
	}
	if n := len(env.backend.Requests()); n != 0 {
		t.Fatalf("expected no backend requests without a session, got %d", n)
	}
}

func TestExpiredSessionClearsTokenAndStops(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(1, jobs.StatusQueued))
	env.backend.RejectAll(http.StatusForbidden)

	_, _, err := runCLI(t, env.configPath, nil, "jobs", "list")
	if !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := presentError(err); got != "session expired; run 'jobdesk login'" {
		t.Fatalf("unexpected presented error %q", got)
	}
	if got := env.storedToken(t); got != "" {
		t.Fatalf("expected token cleared after rejection, got %q", got)
	}

	before := len(env.backend.Requests())
	_, _, err = runCLI(t, env.configPath, nil, "jobs", "show", "1")
	if !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession on the next command, got %v", err)
	}
	if after := len(env.backend.Requests()); after != before {
		t.Fatalf("expected no further requests, got %d new", after-before)
	}
}
