// Package session provides the operator session credential: its cookie
// encoding, parsing, and validity rules.
package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// CookieName is the cookie carrying the session credential.
const CookieName = "turnero_session"

// MaxAge is how long a session stays valid after issuance. Expiry is
// evaluated on every gateway request, never cached.
const MaxAge = 24 * time.Hour

var (
	// ErrMalformed is returned when the cookie value cannot be parsed
	// into the expected shape.
	ErrMalformed = errors.New("malformed session credential")
	// ErrExpired is returned when the session is older than MaxAge.
	ErrExpired = errors.New("session expired")
	// ErrMissingBusiness is returned when the business-unit identifier
	// is empty.
	ErrMissingBusiness = errors.New("session missing business unit")
)

// Session is the operator credential carried in the session cookie.
// The wire shape is a JSON object {usuario, negocio, token, timestamp}.
type Session struct {
	// Usuario is the operator display name.
	Usuario string `json:"usuario"`
	// Negocio is the business-unit identifier. Must be non-empty for
	// the session to be valid.
	Negocio string `json:"negocio"`
	// Token is the opaque credential issued at login.
	Token string `json:"token"`
	// Timestamp is the issuance time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// IssuedAt returns the issuance time.
func (s *Session) IssuedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Validate checks the session against the validity rules at the given
// instant. A session is valid only while now-issued_at < MaxAge and the
// business-unit identifier is non-empty.
func (s *Session) Validate(now time.Time) error {
	if now.Sub(s.IssuedAt()) >= MaxAge {
		return ErrExpired
	}
	if s.Negocio == "" {
		return ErrMissingBusiness
	}
	return nil
}

// Parse decodes a cookie value into a session. The value is the
// URL-escaped JSON encoding produced by Encode.
func Parse(raw string) (*Session, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	var s Session
	if err := json.Unmarshal([]byte(decoded), &s); err != nil {
		return nil, ErrMalformed
	}
	if s.Timestamp == 0 {
		return nil, ErrMalformed
	}
	return &s, nil
}

// Encode returns the cookie value for the session.
func (s *Session) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(b)), nil
}

// FromRequest extracts and parses the session cookie from a request.
// A missing cookie is reported as ErrMalformed: absent and unparseable
// credentials are deliberately indistinguishable to callers.
func FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrMalformed
	}
	return Parse(cookie.Value)
}

// SetCookie writes the session cookie on a response: secure, http-only,
// same-site-lax, scoped to the whole app, expiring with MaxAge.
func SetCookie(w http.ResponseWriter, s *Session) error {
	value, err := s.Encode()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie on a response.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
