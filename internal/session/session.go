// internal/session/session.go
//
// Signed cookie session.
//
// Context
//   The identity provider is an external collaborator; all this package has
//   to do is persist a “logged-in as <email>” claim between requests.  The
//   cookie value is `<base64(email)>.<expiry>.<hmac>` where the MAC covers
//   email and expiry under the configured session secret.  Tampering or
//   expiry makes Current return ok == false, which handlers translate to
//   401.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	cookieName = "sitewright_session"
	lifetime   = 14 * 24 * time.Hour
)

// Manager signs and verifies session cookies with one secret.
type Manager struct {
	secret []byte
}

// NewManager wraps the configured session secret.
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Login sets a signed session cookie containing the user's email.
//
// Callers typically invoke this after the identity provider verified the
// user.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email string) {
	exp := time.Now().Add(lifetime).Unix()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    m.encode(email, exp),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(exp, 0),
	})
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Current returns the email stored in the session, if present, untampered,
// and unexpired.
func (m *Manager) Current(r *http.Request) (email string, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	parts := strings.Split(c.Value, ".")
	if len(parts) != 3 {
		return "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return "", false
	}

	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(string(raw), exp))) {
		return "", false
	}
	return string(raw), true
}

func (m *Manager) encode(email string, exp int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email)) +
		"." + strconv.FormatInt(exp, 10) +
		"." + m.sign(email, exp)
}

func (m *Manager) sign(email string, exp int64) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(email))
	mac.Write([]byte(strconv.FormatInt(exp, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
