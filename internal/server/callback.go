package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// LoginCompleter consumes the redirect query string and finishes the login
// flow. [auth.Flow] implements it.
type LoginCompleter interface {
	CompleteLogin(ctx context.Context, query url.Values) error
}

// CallbackHandler handles the OAuth redirect during login.
//
// The handler does not inspect code or state itself; the flow is the single
// place that verifies them. The first callback wins, later hits are rejected.
type CallbackHandler struct {
	flow        LoginCompleter
	resultChan  chan error
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler that completes logins through flow.
func NewCallbackHandler(flow LoginCompleter) *CallbackHandler {
	return &CallbackHandler{
		flow:       flow,
		resultChan: make(chan error, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP delivers the redirect query to the login flow and renders the outcome.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	err := h.flow.CompleteLogin(r.Context(), r.URL.Query())
	h.send(err)

	if err != nil {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, resultPage, "✗ Login Failed", "You can close this window and restart the login from the terminal.")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, resultPage, "✓ Login Successful", "You can close this window and return to the terminal.")
}

// Wait blocks until the callback has been processed or ctx expires, returning
// the login outcome.
func (h *CallbackHandler) Wait(ctx context.Context) error {
	select {
	case err := <-h.resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send delivers the result through the channel (only once).
func (h *CallbackHandler) send(err error) {
	h.once.Do(func() {
		h.resultChan <- err
		close(h.resultChan)
	})
}

const resultPage = `
<!DOCTYPE html>
<html>
<head>
    <title>phonos</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`
