package token

import (
	"errors"
	"strings"
	"testing"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret")

	tok, err := m.Issue("user-1", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim")
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	m := NewManager("test-secret")

	tok, err := m.Issue("user-1", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewManager("secret-a").Issue("user-1", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewManager("secret-b").Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret")
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", bad, err)
		}
	}
}
