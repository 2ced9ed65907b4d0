package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
)

// DefaultDelay is the quiescence window between the last keystroke and the
// issued request.
const DefaultDelay = 500 * time.Millisecond

// Backend performs the actual search request. [api.Gateway] implements it.
type Backend interface {
	Search(ctx context.Context, query string) (models.SearchResults, error)
}

// Result is one delivered search outcome. An empty Query means the input was
// cleared and any shown results should be dropped.
type Result struct {
	Query   string
	Results models.SearchResults
	Err     error
}

// Searcher debounces keystrokes and issues at most one request per quiet
// period. Responses carry a monotonically increasing sequence number; a
// response that arrives after a newer request was issued is discarded, which
// plain debouncing alone does not guarantee.
type Searcher struct {
	backend  Backend
	debounce *Debouncer
	seq      atomic.Uint64
	results  chan Result
	logger   *log.Logger
}

// NewSearcher creates a searcher delivering outcomes on [Searcher.Results].
func NewSearcher(backend Backend, delay time.Duration, logger *log.Logger) *Searcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Searcher{
		backend:  backend,
		debounce: NewDebouncer(delay),
		results:  make(chan Result, 8),
		logger:   logger,
	}
}

// Results returns the channel search outcomes are delivered on.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Query records a keystroke. The request is only issued once the input has
// been quiet for the full window; an in-flight request is never canceled by
// a newer keystroke, its response is discarded by sequence instead.
func (s *Searcher) Query(ctx context.Context, text string) {
	s.debounce.Trigger(func() {
		seq := s.seq.Add(1)

		if text == "" {
			s.deliver(Result{})
			return
		}

		results, err := s.backend.Search(ctx, text)

		if s.seq.Load() != seq {
			s.logger.Debug("discarding stale search response", "query", text)
			return
		}

		s.deliver(Result{Query: text, Results: results, Err: err})
	})
}

// Stop cancels any pending (not yet issued) request.
func (s *Searcher) Stop() {
	s.debounce.Stop()
}

func (s *Searcher) deliver(r Result) {
	select {
	case s.results <- r:
	default:
		s.logger.Warn("dropping search result, consumer is behind", "query", r.Query)
	}
}
