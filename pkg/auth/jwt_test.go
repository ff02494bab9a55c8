package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestTokenPairRoundTrip(t *testing.T) {
	access, refresh, err := GenerateTokenPair(42, testSecret, 15, 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	claims, err := ValidateAccessToken(access, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error: %v", err)
	}
	if claims.UserID != 42 || claims.Type != AccessToken {
		t.Errorf("access claims = %+v", claims)
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("issuer = %q, expected %q", claims.Issuer, tokenIssuer)
	}

	claims, err = ValidateRefreshToken(refresh, testSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error: %v", err)
	}
	if claims.UserID != 42 || claims.Type != RefreshToken {
		t.Errorf("refresh claims = %+v", claims)
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	access, refresh, err := GenerateTokenPair(7, testSecret, 15, 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	if _, err := ValidateAccessToken(refresh, testSecret); err == nil {
		t.Errorf("refresh token accepted as access token")
	}
	if _, err := ValidateRefreshToken(access, testSecret); err == nil {
		t.Errorf("access token accepted as refresh token")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	access, _, err := GenerateTokenPair(7, testSecret, 15, 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	if _, err := ValidateAccessToken(access, "other-secret"); err == nil {
		t.Errorf("token validated with the wrong secret")
	}
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	claims := newClaims(7, AccessToken, 0)
	claims.Issuer = "some-other-service"
	claims.ExpiresAt = nil

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Errorf("token from a foreign issuer was accepted")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	if !CheckPassword("correct horse battery", hash) {
		t.Errorf("correct password rejected")
	}
	if CheckPassword("wrong password", hash) {
		t.Errorf("wrong password accepted")
	}
}
