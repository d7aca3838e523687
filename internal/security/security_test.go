package security

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the password")
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"matching", "correct horse", true},
		{"wrong", "battery staple", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword(hash, tt.password)
			if err != nil {
				t.Fatalf("CheckPassword() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", ok, tt.want)
			}
		})
	}

	if _, err := CheckPassword("not-a-hash", "x"); err == nil {
		t.Error("expected error for malformed hash")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	raw, issued, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 || claims.TokenID != issued.TokenID {
		t.Errorf("claims = %+v, issued = %+v", claims, issued)
	}
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	raw, _, err := m.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{"wrong secret", NewTokenManager("other", time.Hour), raw},
		{"expired", expired, raw},
		{"garbage", m, "not.a.token"},
		{"empty", m, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.Verify(tt.token); err != ErrInvalidToken {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestCSRFToken(t *testing.T) {
	g := NewCSRFGenerator("secret")
	token, err := g.GenerateToken("token-id")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !g.ValidateToken("token-id", token) {
		t.Error("expected token to validate")
	}
	if g.ValidateToken("other-id", token) {
		t.Error("token must be bound to its id")
	}
	if NewCSRFGenerator("other").ValidateToken("token-id", token) {
		t.Error("token must be bound to the secret")
	}
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(20 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill over time")
	}

	now = now.Add(time.Hour)
	if removed := rl.Cleanup(); removed != 2 {
		t.Errorf("Cleanup() removed %d, want 2", removed)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.1.1.1:80", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookieSecureFlag(t *testing.T) {
	plain := httptest.NewRequest("GET", "http://example.com/", nil)
	if CreateAuthCookie(plain, "v", time.Now()).Secure {
		t.Error("plain HTTP cookie should not be Secure")
	}

	proxied := httptest.NewRequest("GET", "http://example.com/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !CreateAuthCookie(proxied, "v", time.Now()).Secure {
		t.Error("proxied HTTPS cookie should be Secure")
	}

	direct := httptest.NewRequest("GET", "https://example.com/", nil)
	direct.TLS = &tls.ConnectionState{}
	del := CreateDeleteCookie(direct, AuthCookieName)
	if !del.Secure || del.MaxAge != -1 {
		t.Errorf("delete cookie = %+v", del)
	}
}
