package frontproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
)

func TestAttach(t *testing.T) {
	frontendCount := map[string]int{}
	frontend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		frontendCount[r.URL.Path]++
		w.WriteHeader(http.StatusOK)
	}))
	defer frontend.Close()

	var apiCount int
	router := httprouter.New()
	router.HandlerFunc("GET", "/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		apiCount++
		w.WriteHeader(http.StatusNoContent)
	})
	frontendURL, _ := url.Parse(frontend.URL)
	if err := Attach(context.Background(), router, frontendURL); err != nil {
		t.Fatal(err)
	}

	apitest.Handler(router).Get("/api/auth/me").Expect(t).Status(http.StatusNoContent).End()
	apitest.Handler(router).Get("/index.html").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(router).Get("/dashboard/tasks").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(router).Post("/api/auth/me").Expect(t).Status(http.StatusOK).End()

	if apiCount != 1 {
		t.Fatal("Invalid api count: ", apiCount)
	}
	if frontendCount["/index.html"] != 1 || frontendCount["/dashboard/tasks"] != 1 || frontendCount["/api/auth/me"] != 1 {
		t.Fatalf("Invalid number of calls to frontend: %v", frontendCount)
	}
}

func TestUnreachableFrontend(t *testing.T) {
	frontend := httptest.NewServer(http.NotFoundHandler())
	frontendURL, _ := url.Parse(frontend.URL)
	frontend.Close()

	h, err := AsHandler(context.Background(), frontendURL)
	if err != nil {
		t.Fatal(err)
	}
	apitest.Handler(h).Get("/").Expect(t).Status(http.StatusBadGateway).End()
}

func TestInvalidURL(t *testing.T) {
	for _, raw := range []string{"localhost:3000", "ftp://example.com", "/relative"} {
		u, _ := url.Parse(raw)
		_, err := AsHandler(context.Background(), u)
		if !errors.As(err, &InvalidFrontendURL{}) {
			t.Fatalf("Unexpected error for %v: %v", raw, err)
		}
	}
	_, err := AsHandler(context.Background(), nil)
	if !errors.As(err, &InvalidFrontendURL{}) {
		t.Fatalf("Unexpected error for nil url: %v", err)
	}
}
