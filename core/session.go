package core

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

// TokenCookieName is the cookie that carries the session token.
const TokenCookieName = "token"

// SessionCarrier moves the session token between requests and responses via a cookie.
type SessionCarrier struct {
	name string
	opts sessions.Options
}

// NewSessionCarrier applies the cookie attributes from cfg. The cookie has no
// MaxAge, so browsers keep it for the lifetime of the client process.
func NewSessionCarrier(cfg Config) *SessionCarrier {
	return &SessionCarrier{
		name: TokenCookieName,
		opts: sessions.Options{
			Path:     "/",
			Domain:   cfg.CookieDomain,
			HttpOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: sameSiteFromString(cfg.CookieSameSite),
		},
	}
}

// Attach sets the token cookie on the response.
func (s *SessionCarrier) Attach(w http.ResponseWriter, token string) {
	opts := s.opts
	http.SetCookie(w, sessions.NewCookie(s.name, token, &opts))
}

// Clear expires the token cookie. The attributes must match the ones used by
// Attach or browsers keep the original cookie.
func (s *SessionCarrier) Clear(w http.ResponseWriter) {
	opts := s.opts
	opts.MaxAge = -1
	http.SetCookie(w, sessions.NewCookie(s.name, "", &opts))
}

// Extract returns the token from the request. A missing or empty cookie is an
// anonymous request, not an error.
func (s *SessionCarrier) Extract(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
