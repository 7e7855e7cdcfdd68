package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	rosterhandlers "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/handlers"
	rosterrouter "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/router"
)

const shutdownTimeout = 10 * time.Second

// Router builds the HTTP handler of the read API.
func (app *App) Router() http.Handler {
	handlers := rosterhandlers.NewRosterHandlers(app.Roster, app.Resolver, app.Logger, app.Tracer)
	return rosterrouter.NewRouter(handlers, app.Registry)
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (app *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.Cfg.HTTP.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.InfoContext(ctx, "Starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
