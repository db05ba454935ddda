package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap/zaptest"
)

type stubProvider struct {
	name string
	err  error
	seen chan weather.Coordinates
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(_ context.Context, coords weather.Coordinates) (*weather.NormalizedWeather, error) {
	if s.seen != nil {
		s.seen <- coords
	}
	if s.err != nil {
		return nil, s.err
	}
	return &weather.NormalizedWeather{Provider: s.name}, nil
}

type stubRegistry map[string]provider.Provider

func (r stubRegistry) Providers() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

func (r stubRegistry) Provider(name string) (provider.Provider, bool) {
	p, ok := r[name]
	return p, ok
}

var probeLocation = weather.Coordinates{Lat: 31.95, Lon: 35.93}

func TestProbeRecordsReachability(t *testing.T) {
	reg := stubRegistry{
		"up":   &stubProvider{name: "up"},
		"down": &stubProvider{name: "down", err: errors.New("503")},
	}
	p := NewProbe(reg, probeLocation, time.Minute, time.Second, zaptest.NewLogger(t))
	assert.True(t, p.Ready())

	p.RunOnce(context.Background())

	st := p.Statuses()
	require.Len(t, st, 2)
	assert.True(t, st["up"].Reachable)
	assert.False(t, st["down"].Reachable)
	assert.Equal(t, "503", st["down"].LastError)
	assert.False(t, st["up"].LastChecked.IsZero())
	assert.True(t, p.Ready())
	assert.Equal(t, []string{"down"}, p.Unreachable())
}

func TestProbeNotReadyWhenAllFail(t *testing.T) {
	reg := stubRegistry{"down": &stubProvider{name: "down", err: errors.New("timeout")}}
	p := NewProbe(reg, probeLocation, time.Minute, time.Second, zaptest.NewLogger(t))

	p.RunOnce(context.Background())
	assert.False(t, p.Ready())
}

func TestProbeStartRunsImmediately(t *testing.T) {
	seen := make(chan weather.Coordinates, 1)
	reg := stubRegistry{"up": &stubProvider{name: "up", seen: seen}}
	p := NewProbe(reg, probeLocation, time.Minute, time.Second, zaptest.NewLogger(t))

	require.NoError(t, p.Start())
	defer p.Stop()

	select {
	case coords := <-seen:
		assert.Equal(t, probeLocation, coords)
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not run")
	}
}
