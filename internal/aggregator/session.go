package aggregator

import (
	"context"
	"errors"
	"sync"

	"github.com/vzahanych/weather-compare/internal/weather"
)

// ErrStale is returned by Session.Load when a newer load started before this
// one finished. The stale result is dropped.
var ErrStale = errors.New("result superseded by a newer request")

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "idle"
	}
}

// State is a snapshot of a Session. Result is the last good result and
// survives a later failed load.
type State struct {
	Status     Status
	Result     *Result
	Err        error
	Generation uint64
}

// Fetcher is satisfied by *Aggregator.
type Fetcher interface {
	Fetch(ctx context.Context, coords weather.Coordinates, names []string) (*Result, error)
}

// Session tracks the latest load for one consumer, such as a terminal view.
// Superseded loads are not cancelled; their results are discarded when they
// arrive.
type Session struct {
	fetcher Fetcher

	mu         sync.Mutex
	generation uint64
	state      State
}

func NewSession(f Fetcher) *Session {
	return &Session{fetcher: f}
}

func (s *Session) Load(ctx context.Context, coords weather.Coordinates, names []string) (*Result, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state.Status = StatusLoading
	s.state.Err = nil
	s.state.Generation = gen
	s.mu.Unlock()

	res, err := s.fetcher.Fetch(ctx, coords, names)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, ErrStale
	}
	if err != nil {
		s.state.Status = StatusError
		s.state.Err = err
		return nil, err
	}
	s.state.Status = StatusReady
	s.state.Result = res
	return res, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
