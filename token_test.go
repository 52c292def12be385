package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintToken_Verifies(t *testing.T) {
	token, err := MintToken("secret", "ci", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if err := verifyToken(token, []byte("secret")); err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	expired, _ := MintToken("secret", "ci", time.Hour, time.Now().Add(-2*time.Hour))
	otherKey, _ := MintToken("other", "ci", time.Hour, time.Now())

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: tokenIssuer})
	noExpStr, _ := noExp.SignedString([]byte("secret"))

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongIssuerStr, _ := wrongIssuer.SignedString([]byte("secret"))

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"no expiry":    noExpStr,
		"wrong issuer": wrongIssuerStr,
		"garbage":      "not-a-token",
		"raw secret":   "secret",
	}
	for name, tok := range tests {
		if err := verifyToken(tok, []byte("secret")); err == nil {
			t.Errorf("%s: expected token to be rejected", name)
		}
	}
}

func TestMintToken_InvalidArgs(t *testing.T) {
	if _, err := MintToken("", "ci", time.Hour, time.Now()); err == nil {
		t.Fatal("expected error for empty credential")
	}
	if _, err := MintToken("secret", "ci", 0, time.Now()); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestRunToken(t *testing.T) {
	t.Setenv("KEY", "secret")
	var stdout, stderr bytes.Buffer

	if code := runToken([]string{"--ttl", "1h", "--subject", "ci"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if err := verifyToken(strings.TrimSpace(stdout.String()), []byte("secret")); err != nil {
		t.Fatalf("printed token does not verify: %v", err)
	}

	if code := runToken([]string{"--bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2 for unknown flag, got %d", code)
	}
}
