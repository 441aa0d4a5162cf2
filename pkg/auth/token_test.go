package auth

import (
	"strings"
	"testing"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/enums"
)

func testManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bazarly",
		ExpirationMinutes: 30,
	})
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := testManager()
	raw, err := m.Issue("agent-1", enums.ActorRoleAgent)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.Subject != "agent-1" || claims.Role != enums.ActorRoleAgent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := testManager().Issue("u-1", enums.ActorRoleBuyer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := NewTokenManager(config.JWTConfig{Secret: "different", Issuer: "bazarly", ExpirationMinutes: 30})
	if _, err := other.Parse(raw); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{Secret: "test-secret", Issuer: "bazarly", ExpirationMinutes: -5})
	raw, err := m.Issue("u-1", enums.ActorRoleBuyer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Parse(raw); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenManager(config.JWTConfig{Secret: "test-secret", Issuer: "someone-else", ExpirationMinutes: 30})
	raw, err := issuer.Issue("u-1", enums.ActorRoleBuyer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := testManager().Parse(raw); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	m := testManager()
	raw, err := m.Issue("u-1", enums.ActorRole("ghost"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}
