package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestSignParseRoundTrip(t *testing.T) {
	token, err := Sign("user-42", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("user id = %q, want user-42", claims.UserID)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := Sign("user-42", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Parse(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	claims := Claims{
		UserID: "user-42",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token); err == nil {
		t.Fatal("token with a foreign issuer accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := Parse(token); err == nil {
			t.Errorf("Parse(%q) accepted", token)
		}
	}
}
