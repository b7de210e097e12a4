package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSigningSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenAuthorityRoundTrip(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	issuedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	token, err := authority.Issue("42", issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := authority.Validate(token, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if got := claims.IssuedAt.Time; !got.Equal(issuedAt) {
		t.Fatalf("expected iat %v, got %v", issuedAt, got)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(issuedAt.Add(DefaultTokenLifetime)) {
		t.Fatalf("expected exp %v, got %v", issuedAt.Add(DefaultTokenLifetime), got)
	}
}

func TestTokenAuthorityExpiryBoundary(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	issuedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	token, err := authority.Issue("42", issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	justBefore := issuedAt.Add(24*time.Hour - time.Second)
	if _, err := authority.Validate(token, justBefore); err != nil {
		t.Fatalf("expected token to be valid just before expiry, got %v", err)
	}

	// Expiry is exclusive: a token checked exactly at exp is already expired.
	atExpiry := issuedAt.Add(24 * time.Hour)
	if _, err := authority.Validate(token, atExpiry); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at the boundary, got %v", err)
	}

	after := issuedAt.Add(25 * time.Hour)
	if _, err := authority.Validate(token, after); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired past the boundary, got %v", err)
	}
}

func TestTokenAuthorityRejectsTamperedToken(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	issuedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	token, err := authority.Issue("42", issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// Flip one character of the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := authority.Validate(tampered, issuedAt.Add(time.Minute)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered signature, got %v", err)
	}
}

func TestTokenAuthorityRejectsWrongSecret(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}
	other, err := NewTokenAuthority([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	issuedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	token, err := authority.Issue("42", issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := other.Validate(token, issuedAt.Add(time.Minute)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid under a different secret, got %v", err)
	}
}

func TestTokenAuthorityRejectsMalformedTokens(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	for _, token := range []string{"", "   ", "not.a.jwt", "garbage"} {
		if _, err := authority.Validate(token, now); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}

func TestNewTokenAuthorityRejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenAuthority(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	authority, err := NewTokenAuthority(testSigningSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	if _, err := authority.Issue("  ", time.Now()); err == nil {
		t.Fatal("expected error for empty subject")
	}
}
