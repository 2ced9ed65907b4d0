package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/phonos/internal/auth"
	"github.com/desertthunder/phonos/internal/server"
	"github.com/desertthunder/phonos/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the loopback server waits for the redirect.
const loginTimeout = 5 * time.Minute

// AuthLogin walks the full PKCE login: start the loopback server, open the
// provider's consent page, then wait for the redirect to complete the flow.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.config.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify.client_id is not set, run 'phonos setup' first", shared.ErrInvalidConfig)
	}

	handler := server.NewCallbackHandler(r.flow)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	addr := fmt.Sprintf("%s:%d", r.config.Callback.Host, r.config.Callback.Port)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(serverCtx, addr, router)
	}()

	authURL, err := r.flow.BeginLogin()
	if err != nil {
		return fmt.Errorf("failed to begin login: %w", err)
	}

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser to continue:\n\n%s\n\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL in your browser to continue:\n\n%s\n\n", authURL)
	}

	r.logger.Info("waiting for OAuth redirect", "addr", addr)

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	err = handler.Wait(waitCtx)
	stopServer()

	select {
	case srvErr := <-serverErr:
		if srvErr != nil {
			return fmt.Errorf("callback server failed: %w", srvErr)
		}
	case <-time.After(3 * time.Second):
		r.logger.Warn("callback server did not shut down cleanly")
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out waiting for login", shared.ErrAuthFailed)
		}
		return err
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Logged in\n")
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.flow.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	state := r.flow.State()
	r.writePlain("Session: %s\n", state)

	if state != auth.Authenticated {
		return nil
	}

	// Round-trip against the backend so a revoked token is reported
	// instead of a stale local state.
	if _, err := r.library.Playlists(ctx); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return r.writePlain("Backend: ✗ session rejected, log in again\n")
		}
		return r.writePlain("Backend: ✗ unreachable (%v)\n", err)
	}
	return r.writePlain("Backend: ✓ session valid\n")
}
