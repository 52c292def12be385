package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "reasonbot"

// MintToken returns an HS256 token signed with the API credential that
// expires after ttl.
func MintToken(credential, subject string, ttl time.Duration, now time.Time) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("credential is required to sign tokens")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	s, err := token.SignedString([]byte(credential))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return s, nil
}

// verifyToken checks that presented is an unexpired token minted with the
// credential. A "Bearer " prefix is accepted.
func verifyToken(presented string, credential []byte) error {
	tokenStr := presented
	if scheme, rest, ok := strings.Cut(presented, " "); ok && strings.EqualFold(scheme, "Bearer") {
		tokenStr = rest
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return credential, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
