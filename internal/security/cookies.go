package security

import (
	"net/http"
	"time"
)

// AuthCookieName carries the host token
const AuthCookieName = "auth_token"

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateAuthCookie builds the host token cookie; Secure follows the request scheme
func CreateAuthCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie expires the named cookie
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateTempCookie is a short-lived cookie used during the OAuth redirect dance
func CreateTempCookie(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	}
}
