package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtTestSecret = "test-secret"

func mustValidate(t *testing.T, secret, token string) *Claims {
	t.Helper()
	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	return claims
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(jwtTestSecret, "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := mustValidate(t, jwtTestSecret, token)
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("expected token type %q, got %q", TokenTypeAccess, claims.TokenType)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user id user-123, got %q", claims.UserID)
	}
	if claims.TokenID != "" {
		t.Errorf("access tokens carry no token id, got %q", claims.TokenID)
	}
}

func TestGenerateRefreshToken_CarriesTokenID(t *testing.T) {
	token, err := GenerateRefreshToken(jwtTestSecret, "user-123", "token-id-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := mustValidate(t, jwtTestSecret, token)
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("expected token type %q, got %q", TokenTypeRefresh, claims.TokenType)
	}
	if claims.TokenID != "token-id-1" {
		t.Errorf("expected token id token-id-1, got %q", claims.TokenID)
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	expired := func() string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID:    "user-123",
			TokenType: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}).SignedString([]byte(jwtTestSecret))
		if err != nil {
			t.Fatalf("failed to sign expired token: %v", err)
		}
		return signed
	}

	unsigned := func() string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID:    "user-123",
			TokenType: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to sign none token: %v", err)
		}
		return signed
	}

	wrongSecret, _ := GenerateAccessToken("another-secret", "user-123")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage string", "not-a-valid-jwt"},
		{"wrong secret", wrongSecret},
		{"expired", expired()},
		{"alg none", unsigned()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(jwtTestSecret, tt.token); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestTokenDurations(t *testing.T) {
	access, _ := GenerateAccessToken(jwtTestSecret, "user-123")
	refresh, _ := GenerateRefreshToken(jwtTestSecret, "user-123", "token-id-2")

	tests := []struct {
		name  string
		token string
		ttl   time.Duration
	}{
		{"access", access, AccessTokenDuration},
		{"refresh", refresh, RefreshTokenDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := mustValidate(t, jwtTestSecret, tt.token)
			delta := time.Until(claims.ExpiresAt.Time) - tt.ttl
			if delta < -2*time.Second || delta > 2*time.Second {
				t.Errorf("expiry off by %v from the configured %v", delta, tt.ttl)
			}
		})
	}
}
