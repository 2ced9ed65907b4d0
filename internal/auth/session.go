package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// State enumerates the login flow states.
//
// Failed is terminal: there is no automatic retry, the user restarts the
// flow from NoSession.
type State int

const (
	NoSession State = iota
	AwaitingRedirect
	AwaitingCallback
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no session"
	case AwaitingRedirect:
		return "awaiting redirect"
	case AwaitingCallback:
		return "awaiting callback"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Storage is the durable client storage the flow persists into.
// [store.Store] implements it over SQLite.
type Storage interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
	SaveArtifact(verifier, state string) error
	Artifact() (verifier, state string, err error)
	ClearArtifact() error
}

// FlowOpts configures a [Flow].
type FlowOpts struct {
	ClientID    string
	RedirectURI string
	Scopes      string
	BackendURL  string
	Storage     Storage
	HTTPClient  *http.Client
	Logger      *log.Logger
	// Endpoint overrides the provider endpoints, used by tests.
	Endpoint *oauth2.Endpoint
}

// Flow owns the login state machine, the persisted token, and the PKCE
// artifacts. It is shared by reference with the components that need the
// session; there is no ambient global auth state.
type Flow struct {
	oauth      *oauth2.Config
	backendURL string
	httpClient *http.Client
	storage    Storage
	logger     *log.Logger

	mu       sync.Mutex
	state    State
	onLogout []func()
}

// NewFlow creates a login flow for the configured provider application.
func NewFlow(opts FlowOpts) *Flow {
	endpoint := oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL}
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	state := NoSession
	if token, err := opts.Storage.Token(); err == nil && token != "" {
		state = Authenticated
	}

	return &Flow{
		oauth: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURI,
			Scopes:      strings.Fields(opts.Scopes),
			Endpoint:    endpoint,
		},
		backendURL: opts.BackendURL,
		httpClient: opts.HTTPClient,
		storage:    opts.Storage,
		logger:     opts.Logger,
		state:      state,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Token returns the persisted application token, or [shared.ErrNotAuthenticated]
// when no session exists.
func (f *Flow) Token() (string, error) {
	token, err := f.storage.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return token, nil
}

// OnLogout registers a hook invoked whenever the session ends, whether by an
// explicit logout or a 401 invalidation. The realtime channel registers its
// disconnect here.
func (f *Flow) OnLogout(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLogout = append(f.onLogout, fn)
}

// BeginLogin generates a fresh PKCE artifact, persists it, and returns the
// provider authorization URL. Transitions to AwaitingRedirect.
func (f *Flow) BeginLogin() (string, error) {
	artifact := GenerateArtifact()

	if err := f.storage.SaveArtifact(artifact.Verifier, artifact.State); err != nil {
		return "", fmt.Errorf("failed to persist PKCE artifact: %w", err)
	}

	authURL := f.oauth.AuthCodeURL(artifact.State, oauth2.S256ChallengeOption(artifact.Verifier))

	f.mu.Lock()
	f.state = AwaitingRedirect
	f.mu.Unlock()

	f.logger.Debug("login started", "redirect_uri", f.oauth.RedirectURL)
	return authURL, nil
}

// CompleteLogin consumes the redirect query: it verifies the anti-forgery
// state, exchanges the code and verifier with the provider, and trades the
// provider tokens for an application token at the backend's /auth endpoint.
//
// Every failure path erases the PKCE artifact and lands in Failed.
func (f *Flow) CompleteLogin(ctx context.Context, query url.Values) error {
	f.mu.Lock()
	f.state = AwaitingCallback
	f.mu.Unlock()

	code := query.Get("code")
	if code == "" {
		return f.fail(shared.ErrMissingCode)
	}

	verifier, storedState, err := f.storage.Artifact()
	if err != nil {
		return f.fail(fmt.Errorf("%w: %v", shared.ErrAuthFailed, err))
	}

	// The comparison is mandatory CSRF protection; an empty stored state
	// (no login in flight) fails the same way.
	if storedState == "" || query.Get("state") != storedState {
		return f.fail(shared.ErrStateMismatch)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	token, err := f.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		f.logger.Debug("token exchange failed", "error", err)
		return f.fail(shared.ErrTokenExchange)
	}

	appToken, err := f.backendAuth(ctx, token.AccessToken, token.RefreshToken)
	if err != nil {
		return f.fail(err)
	}

	if err := f.storage.SetToken(appToken); err != nil {
		return f.fail(fmt.Errorf("%w: %v", shared.ErrAuthFailed, err))
	}
	if err := f.storage.ClearArtifact(); err != nil {
		f.logger.Warn("failed to erase PKCE artifact", "error", err)
	}

	f.mu.Lock()
	f.state = Authenticated
	f.mu.Unlock()

	f.logger.Info("login complete")
	return nil
}

// backendAuth forwards the provider tokens to POST /auth and returns the
// application-scoped token.
func (f *Flow) backendAuth(ctx context.Context, accessToken, refreshToken string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBackendAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.backendURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBackendAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBackendAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", shared.ErrBackendAuth, resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBackendAuth, err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("%w: empty token", shared.ErrBackendAuth)
	}

	return payload.Token, nil
}

// fail erases the artifact and transitions to the terminal Failed state.
func (f *Flow) fail(err error) error {
	if clearErr := f.storage.ClearArtifact(); clearErr != nil {
		f.logger.Warn("failed to erase PKCE artifact", "error", clearErr)
	}

	f.mu.Lock()
	f.state = Failed
	f.mu.Unlock()

	f.logger.Debug("login failed", "error", err)
	return err
}

// Logout clears the token, runs the registered teardown hooks, and returns
// to NoSession. Called explicitly by the user and implicitly on a 401.
func (f *Flow) Logout() error {
	if err := f.storage.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := f.storage.ClearArtifact(); err != nil {
		f.logger.Warn("failed to erase PKCE artifact", "error", err)
	}

	f.mu.Lock()
	f.state = NoSession
	hooks := make([]func(), len(f.onLogout))
	copy(hooks, f.onLogout)
	f.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	f.logger.Info("logged out")
	return nil
}
