package main

import (
	"errors"
	"fmt"
	"testing"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/session"
	"jobdesk/internal/testsupport"
)

func TestPresentError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("list jobs: %w", backend.ErrUnauthorized), "session expired; run 'jobdesk login'"},
		{fmt.Errorf("load job 3: %w", session.ErrNoSession), "no admin session; run 'jobdesk login'"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		if got := presentError(tc.err); got != tc.want {
			t.Fatalf("presentError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestAPIURLFlagRedirectsRequests(t *testing.T) {
	env := setupCLITestEnv(t)
	other := testsupport.NewBackend(t, testsupport.NewJob(9, jobs.StatusQueued))

	out, _, err := runCLI(t, env.configPath, nil, "--api-url", other.URL(), "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "user-9")
	if len(env.backend.Requests()) != 0 {
		t.Fatal("configured backend must not be contacted when --api-url is set")
	}
	if other.Count(testsupport.RouteList) != 1 {
		t.Fatalf("expected override backend to serve the listing, got %d", other.Count(testsupport.RouteList))
	}
}

func TestRootHelpNeedsNoSession(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env.configPath, nil, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, nil, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	requireContains(t, out, "dashboard")
	requireContains(t, out, "reports")
}
