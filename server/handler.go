// Package server assembles the HTTP surface of the chiefofstaff API.
package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/andrebq/chiefofstaff/authprogram"
	authapi "github.com/andrebq/chiefofstaff/authprogram/api"
	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/frontproxy"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/hlog"
)

type (
	Deps struct {
		Service      *authprogram.Service
		Store        credstore.Store
		SecureCookie bool
		CORSOrigins  []string
		// Frontend receives every request no route matches, optional
		Frontend *url.URL
	}

	// placeholder is a resource the API reserves but does not serve yet
	placeholder struct {
		method  string
		path    string
		message string
	}
)

const AuthPrefix = "/api/auth"

var placeholders = []placeholder{
	{"POST", "/api/tasks", "Task creation not yet implemented"},
	{"GET", "/api/tasks", "Task listing not yet implemented"},
	{"POST", "/api/agents", "Agent creation not yet implemented"},
	{"GET", "/api/agents", "Agent listing not yet implemented"},
	{"POST", "/api/contexts/upload", "Context upload not yet implemented"},
	{"GET", "/api/contexts", "Context listing not yet implemented"},
	{"POST", "/api/delegate", "Delegation not yet implemented"},
	{"POST", "/api/assign", "Assignment not yet implemented"},
	{"GET", "/api/logs/:agent_id", "Agent logs not yet implemented"},
}

// NewHandler returns the root handler of the API.
func NewHandler(ctx context.Context, deps Deps) (http.Handler, error) {
	router := httprouter.New()
	realm := authapi.NewRealm(deps.Service, authapi.CookieOptions{Secure: deps.SecureCookie})

	router.HandlerFunc("GET", "/", welcome())
	router.HandlerFunc("GET", "/healthz", healthz(deps.Store))
	realm.Mount(router, AuthPrefix)
	for _, p := range placeholders {
		router.Handler(p.method, p.path, realm.Protect(notImplemented(p.message)))
	}
	if deps.Frontend != nil {
		if err := frontproxy.Attach(ctx, router, deps.Frontend); err != nil {
			return nil, err
		}
	} else {
		router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authapi.WriteDetail(w, http.StatusNotFound, "Not Found")
		})
	}

	var h http.Handler = router
	h = CORS(deps.CORSOrigins)(h)
	h = accessLog(ctx, h)
	return h, nil
}

func welcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to AI Chief of Staff API"})
	}
}

func healthz(store credstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Database is not reachable")
			authapi.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		authapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func notImplemented(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteDetail(w, http.StatusNotImplemented, msg)
	}
}

func accessLog(ctx context.Context, next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	})(next)
	h = hlog.RequestIDHandler("requestID", "X-Request-Id")(h)
	return hlog.NewHandler(logutil.GetOrDefault(ctx))(h)
}
