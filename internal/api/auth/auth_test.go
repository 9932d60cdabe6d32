package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), time.Hour)

	token, err := svc.GenerateToken("operator")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "operator" || claims.Subject != "operator" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), time.Hour)

	other, _ := NewJWTService([]byte("other-secret"), time.Hour).GenerateToken("operator")
	expired, _ := NewJWTService([]byte("test-secret"), -time.Minute).GenerateToken("operator")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongIssuer, _ := foreign.SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ValidateToken(token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestJWTService_NoSecret(t *testing.T) {
	svc := NewJWTService(nil, time.Hour)
	if _, err := svc.GenerateToken("operator"); err == nil {
		t.Error("expected error without secret")
	}
}

func TestCredentials_Verify(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	creds := NewCredentials("admin", hash)

	if !creds.Verify("admin", "hunter2") {
		t.Error("expected valid credentials")
	}
	if creds.Verify("admin", "wrong") {
		t.Error("expected wrong password to fail")
	}
	if creds.Verify("root", "hunter2") {
		t.Error("expected wrong username to fail")
	}
	if NewCredentials("", "").Verify("", "") {
		t.Error("expected unconfigured account to reject everything")
	}
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(3)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("expected fourth attempt to be throttled")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("expected other IP to be unaffected")
	}

	time.Sleep(time.Millisecond)
	l.Cleanup(0)
	if !l.Allow("10.0.0.1") {
		t.Error("expected fresh limiter after cleanup")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	r.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(r); got != "192.0.2.1" {
		t.Errorf("expected remote host, got %s", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.5" {
		t.Errorf("expected forwarded ip, got %s", got)
	}
}
