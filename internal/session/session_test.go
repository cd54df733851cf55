package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFileTokenStoreLoadMissingFile(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "missing"))

	token, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
}

func TestFileTokenStoreRoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "admin_token")
	store := NewFileTokenStore(path)

	if err := store.Save("abc123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("token mismatch: got %q", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected token file removed, stat err=%v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestGuardRequiresToken(t *testing.T) {
	guard := NewGuard(NewMemoryTokenStore(""), nil)
	if err := guard.Require(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := guard.Login("  tok  "); err != nil {
		t.Fatalf("login: %v", err)
	}
	token, err := guard.Token()
	if err != nil || token != "tok" {
		t.Fatalf("expected trimmed token, got %q err=%v", token, err)
	}
	if err := guard.Login(" "); err == nil {
		t.Fatal("expected empty token to be rejected")
	}
}

func TestGuardInvalidateClearsTokenAndBlocks(t *testing.T) {
	store := NewMemoryTokenStore("tok")
	guard := NewGuard(store, nil)
	calls := 0
	guard.OnRevoke(func() { calls++ })

	if err := guard.Invalidate("401"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := guard.Invalidate("403"); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected listener once, got %d", calls)
	}
	if stored, _ := store.Load(); stored != "" {
		t.Fatalf("expected token cleared, got %q", stored)
	}
	if !guard.Revoked() {
		t.Fatal("expected guard revoked")
	}

	// A token reappearing on disk does not reopen a revoked session.
	_ = store.Save("other")
	if err := guard.Require(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after revoke, got %v", err)
	}

	if err := guard.Login("fresh"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := guard.Require(); err != nil {
		t.Fatalf("expected session restored, got %v", err)
	}
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, ok := InspectToken(signed)
	if !ok {
		t.Fatal("expected jwt to be parsed")
	}
	if claims.Subject != "admin@example.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
	if claims.Expired(time.Now()) {
		t.Fatal("expected token to be unexpired")
	}
	if _, ok := InspectToken("opaque-token"); ok {
		t.Fatal("expected opaque token to be reported as non-jwt")
	}
}
