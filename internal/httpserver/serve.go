package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/andrebq/chiefofstaff/internal/logutil"
)

// ShutdownTimeout bounds how long in-flight requests may take once the
// server context is cancelled.
var ShutdownTimeout = time.Minute

// Serve listens on bind and serves handler until ctx is cancelled.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("unable to listen on %v, cause %w", bind, err)
	}
	return ServeListener(ctx, ln, handler)
}

// ServeListener is like Serve but takes ownership of an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := http.Server{
		Handler:           handler,
		Addr:              ln.Addr().String(),
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 5,
		// requests keep the server values but must survive the graceful
		// shutdown triggered by ctx
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	err := make(chan error, 1)
	done := make(chan struct{})
	go serveInBackground(ctx, &server, ln, err, done)
	<-done
	return <-err
}

func serveInBackground(ctx context.Context, server *http.Server, ln net.Listener, firstErr chan<- error, done chan<- struct{}) {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()
	defer close(done)
	serverCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer cancel()
		log.Info().Msg("Starting HTTP server")
		err := server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		} else if err != nil {
			firstErr <- err
		}
	}()
	select {
	case <-serverCtx.Done():
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
		log.Info().Msg("Shutdown completed")
	}
	<-stopped
	close(firstErr)
}
