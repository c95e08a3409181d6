package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, expiresAt, err := p.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want future", expiresAt)
	}
	userID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	signer, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	otherIssuer := NewTokenProvider(signer, pub, "someone-else", "test-audience", time.Minute)
	otherAudience := NewTokenProvider(signer, pub, "test-issuer", "other-api", time.Minute)
	expired := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute)

	mint := func(tp *TokenProvider) string {
		tok, _, err := tp.IssueAccess("user-1")
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		return tok
	}
	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong issuer", mint(otherIssuer)},
		{"wrong audience", mint(otherAudience)},
		{"expired", mint(expired)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.ValidateAccess(tc.token); err != ErrInvalidToken {
				t.Errorf("ValidateAccess err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenProvider_VerifyOnly(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	p := NewTokenProvider(nil, pub, "test-issuer", "test-audience", time.Minute)
	if _, _, err := p.IssueAccess("user-1"); err != ErrNoSigningKey {
		t.Errorf("IssueAccess err = %v, want ErrNoSigningKey", err)
	}
}
