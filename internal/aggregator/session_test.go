package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-compare/internal/weather"
)

// gatedFetcher blocks each call until its gate for that location is released.
type gatedFetcher struct {
	gates   map[string]chan struct{}
	started chan string
	errs    map[string]error
}

func (f *gatedFetcher) Fetch(_ context.Context, coords weather.Coordinates, _ []string) (*Result, error) {
	f.started <- coords.Name
	<-f.gates[coords.Name]
	if err := f.errs[coords.Name]; err != nil {
		return nil, err
	}
	return &Result{Location: coords}, nil
}

func newGatedFetcher(names ...string) *gatedFetcher {
	f := &gatedFetcher{
		gates:   make(map[string]chan struct{}),
		started: make(chan string, len(names)),
		errs:    make(map[string]error),
	}
	for _, n := range names {
		f.gates[n] = make(chan struct{})
	}
	return f
}

func TestSessionDiscardsStaleResult(t *testing.T) {
	f := newGatedFetcher("first", "second")
	s := NewSession(f)
	assert.Equal(t, StatusIdle, s.State().Status)

	type outcome struct {
		res *Result
		err error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		res, err := s.Load(context.Background(), weather.Coordinates{Name: "first"}, nil)
		firstDone <- outcome{res, err}
	}()
	require.Equal(t, "first", <-f.started)

	secondDone := make(chan outcome, 1)
	go func() {
		res, err := s.Load(context.Background(), weather.Coordinates{Name: "second"}, nil)
		secondDone <- outcome{res, err}
	}()
	require.Equal(t, "second", <-f.started)
	assert.Equal(t, StatusLoading, s.State().Status)

	close(f.gates["second"])
	second := <-secondDone
	require.NoError(t, second.err)
	assert.Equal(t, "second", second.res.Location.Name)

	close(f.gates["first"])
	first := <-firstDone
	assert.ErrorIs(t, first.err, ErrStale)
	assert.Nil(t, first.res)

	st := s.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "second", st.Result.Location.Name)
	assert.Equal(t, uint64(2), st.Generation)
}

func TestSessionKeepsLastGoodResultOnError(t *testing.T) {
	f := newGatedFetcher("good", "bad")
	boom := errors.New("boom")
	f.errs["bad"] = boom
	close(f.gates["good"])
	close(f.gates["bad"])

	s := NewSession(f)

	_, err := s.Load(context.Background(), weather.Coordinates{Name: "good"}, nil)
	require.NoError(t, err)
	<-f.started

	_, err = s.Load(context.Background(), weather.Coordinates{Name: "bad"}, nil)
	assert.ErrorIs(t, err, boom)
	<-f.started

	st := s.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "error", st.Status.String())
	assert.ErrorIs(t, st.Err, boom)
	require.NotNil(t, st.Result)
	assert.Equal(t, "good", st.Result.Location.Name)
}
