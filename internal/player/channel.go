// Package player maintains the realtime playback channel and sends
// playback commands to the backend.
package player

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// TokenIssuer mints the short-lived token that authenticates the
// event stream subscription.
type TokenIssuer interface {
	RealtimeToken(ctx context.Context) (string, error)
}

// Channel subscribes to the backend's playback event stream and
// republishes decoded states. It reconnects on any failure with
// capped exponential backoff, and always retains the last state it
// saw so consumers render something during an outage.
type Channel struct {
	baseURL    string
	tokens     TokenIssuer
	httpClient *http.Client
	logger     *log.Logger

	mu     sync.Mutex
	last   *models.PlaybackState
	cancel context.CancelFunc
	states chan *models.PlaybackState
	done   chan struct{}
}

func NewChannel(baseURL string, tokens TokenIssuer, httpClient *http.Client, logger *log.Logger) *Channel {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Channel{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}

// States returns the channel playback updates are delivered on. It is
// closed once Disconnect runs (or the connect context ends).
func (c *Channel) States() <-chan *models.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states
}

// Last returns the most recently decoded state, surviving drops and
// reconnects. Nil means idle or never connected.
func (c *Channel) Last() *models.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Connect starts the subscription loop. Calling it again while
// connected is a no-op.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.states = make(chan *models.PlaybackState, 8)
	c.done = make(chan struct{})

	go c.run(ctx, c.states, c.done)
}

// Disconnect stops the subscription loop and waits for it to exit.
// The retained last state is cleared.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.last = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Channel) run(ctx context.Context, states chan *models.PlaybackState, done chan struct{}) {
	defer close(done)
	defer close(states)

	backoff := initialBackoff
	for {
		streamed, err := c.subscribe(ctx, states)
		if ctx.Err() != nil {
			return
		}
		if streamed {
			// The stream was healthy before this drop, so retry
			// promptly instead of carrying over an inflated delay.
			backoff = initialBackoff
		}

		c.logger.Warn("playback stream dropped, reconnecting", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// subscribe holds one stream open until it drops. The returned bool reports
// whether at least one frame arrived on this connection.
func (c *Channel) subscribe(ctx context.Context, states chan *models.PlaybackState) (bool, error) {
	token, err := c.tokens.RealtimeToken(ctx)
	if err != nil {
		return false, fmt.Errorf("realtime token: %w", err)
	}

	url := fmt.Sprintf("%s/player?token=%s", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &shared.ServerError{Status: resp.StatusCode}
	}

	c.logger.Debug("playback stream connected")
	streamed := false
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		streamed = true

		state, err := models.ParsePlaybackState([]byte(data))
		if err != nil {
			// Malformed frame. Keep the retained state and wait
			// for the next one.
			c.logger.Warn("dropping malformed playback event", "error", err)
			continue
		}
		c.publish(states, state)
	}
	return streamed, scanner.Err()
}

func (c *Channel) publish(states chan *models.PlaybackState, state *models.PlaybackState) {
	c.mu.Lock()
	c.last = state
	c.mu.Unlock()

	select {
	case states <- state:
	default:
		// Drain one stale update so the consumer always sees the
		// newest state.
		select {
		case <-states:
		default:
		}
		select {
		case states <- state:
		default:
		}
	}
}
