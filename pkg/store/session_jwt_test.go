package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newJWTStore(t *testing.T, ttl time.Duration) *JWTSessionStore {
	t.Helper()
	s, err := NewJWTSessionStore("test-secret", ttl, NewMemoryTokenRevoker(), JWTOptions{})
	if err != nil {
		t.Fatalf("new jwt session store: %v", err)
	}
	return s
}

func TestJWTSessionStoreIssueAndResolve(t *testing.T) {
	s := newJWTStore(t, time.Minute)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("get user by token: %v", err)
	}
	if !ok || uid != "user-1" {
		t.Fatalf("resolved (%q, %v), want (user-1, true)", uid, ok)
	}
}

func TestJWTSessionStoreRejectsTamperedToken(t *testing.T) {
	s := newJWTStore(t, time.Minute)

	foreign, err := NewJWTSessionStore("different-secret", time.Minute, NewMemoryTokenRevoker(), JWTOptions{})
	if err != nil {
		t.Fatalf("new jwt session store: %v", err)
	}
	token, err := foreign.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("token signed with a different secret must not verify")
	}
}

func TestJWTSessionStoreDeleteRevokes(t *testing.T) {
	s := newJWTStore(t, time.Minute)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("deleted session must not resolve")
	}
}

func TestJWTSessionStoreRedisRevoker(t *testing.T) {
	r := miniredis.RunT(t)
	s, err := NewJWTSessionStore("test-secret", time.Minute, NewRedisTokenRevoker(r.Addr(), ""), JWTOptions{})
	if err != nil {
		t.Fatalf("new jwt session store: %v", err)
	}

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("deleted session must not resolve")
	}
}
