// Package frontproxy forwards requests the API does not handle to the web
// frontend, which lets the browser see the API and the frontend as a single
// origin sharing the session cookie.
package frontproxy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	InvalidFrontendURL struct {
		URL string
	}
)

func (i InvalidFrontendURL) Error() string {
	return fmt.Sprintf("frontend url %v must be an absolute http(s) url", i.URL)
}

// Attach makes router delegate every unmatched path to frontend.
func Attach(ctx context.Context, router *httprouter.Router, frontend *url.URL) error {
	proxy, err := AsHandler(ctx, frontend)
	if err != nil {
		return err
	}
	router.NotFound = proxy
	// the frontend may accept methods the api routes don't
	router.HandleMethodNotAllowed = false
	return nil
}

func AsHandler(ctx context.Context, frontend *url.URL) (http.Handler, error) {
	if frontend == nil || (frontend.Scheme != "http" && frontend.Scheme != "https") || frontend.Host == "" {
		target := ""
		if frontend != nil {
			target = frontend.String()
		}
		return nil, InvalidFrontendURL{URL: target}
	}
	log := logutil.GetOrDefault(ctx).With().Str("frontend", frontend.String()).Logger()
	proxy := httputil.NewSingleHostReverseProxy(frontend)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Frontend is not reachable")
		http.Error(w, "frontend is not reachable", http.StatusBadGateway)
	}
	return proxy, nil
}
