// Package api exposes authprogram over HTTP.
package api

import (
	"context"
	"net/http"
	"regexp"

	"github.com/andrebq/chiefofstaff/authprogram"
	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/julienschmidt/httprouter"
)

type (
	// Realm guards handlers with session tokens and serves the endpoints
	// that create and destroy them.
	Realm struct {
		svc    *authprogram.Service
		cookie CookieOptions
	}

	CookieOptions struct {
		// Secure must be set whenever the API is served over TLS
		Secure bool
	}

	ctxKey byte
)

const (
	CookieName = "session_token"

	userKey = ctxKey(1)
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

func NewRealm(svc *authprogram.Service, cookie CookieOptions) *Realm {
	return &Realm{
		svc:    svc,
		cookie: cookie,
	}
}

// Mount registers the auth endpoints under prefix (usually /api/auth).
func (s *Realm) Mount(router *httprouter.Router, prefix string) {
	router.HandlerFunc("POST", prefix+"/register", s.register())
	router.HandlerFunc("POST", prefix+"/login", s.login())
	router.HandlerFunc("POST", prefix+"/logout", s.logout())
	router.HandlerFunc("GET", prefix+"/me", s.me())
}

// Protect only calls sensitive when the request carries a valid session,
// the user is then available through UserFrom.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// UserFrom returns the user authenticated by Protect.
func UserFrom(ctx context.Context) (*credstore.User, bool) {
	u, ok := ctx.Value(userKey).(*credstore.User)
	return u, ok
}

func (s *Realm) authenticate(r *http.Request) (*credstore.User, error) {
	return s.svc.Authenticate(r.Context(), requestToken(r))
}

// requestToken reads the session cookie, falling back to a bearer token
// for non-browser clients.
func requestToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
	if len(groups) == 0 {
		return ""
	}
	return groups[1]
}

func (s *Realm) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookie.Secure,
	})
}

func (s *Realm) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookie.Secure,
	})
}
