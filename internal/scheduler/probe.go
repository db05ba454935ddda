package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap"
)

// Registry is satisfied by *aggregator.Aggregator.
type Registry interface {
	Providers() []string
	Provider(name string) (provider.Provider, bool)
}

// ProviderStatus is the outcome of the last probe of one provider.
type ProviderStatus struct {
	Reachable   bool      `json:"reachable"`
	LastChecked time.Time `json:"last_checked"`
	LastError   string    `json:"last_error,omitempty"`
}

// Probe periodically fetches a fixed location through every registered
// provider and remembers which ones answered.
type Probe struct {
	scheduler *gocron.Scheduler
	registry  Registry
	location  weather.Coordinates
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	mu       sync.RWMutex
	statuses map[string]ProviderStatus
}

func NewProbe(registry Registry, location weather.Coordinates, interval, timeout time.Duration, logger *zap.Logger) *Probe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Probe{
		scheduler: gocron.NewScheduler(time.UTC),
		registry:  registry,
		location:  location,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
		statuses:  make(map[string]ProviderStatus),
	}
}

// Start schedules the probe job; the first run happens immediately.
func (p *Probe) Start() error {
	minutes := int(p.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := p.scheduler.Every(minutes).Minutes().Do(func() {
		p.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	p.logger.Info("Provider probe started",
		zap.Int("interval_minutes", minutes),
		zap.String("location", p.location.Key()))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (p *Probe) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// RunOnce probes every provider in parallel and records the outcome.
func (p *Probe) RunOnce(ctx context.Context) {
	p.logger.Debug("Running provider probe")

	var wg sync.WaitGroup
	for _, name := range p.registry.Providers() {
		prov, ok := p.registry.Provider(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(name string, prov provider.Provider) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			_, err := prov.Fetch(ctx, p.location)
			status := ProviderStatus{
				Reachable:   err == nil,
				LastChecked: time.Now().UTC(),
			}
			if err != nil {
				status.LastError = err.Error()
				p.logger.Warn("Provider probe failed", zap.String("provider", name), zap.Error(err))
			}

			p.mu.Lock()
			p.statuses[name] = status
			p.mu.Unlock()
		}(name, prov)
	}
	wg.Wait()
}

// Statuses returns a copy of the last recorded outcomes.
func (p *Probe) Statuses() map[string]ProviderStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]ProviderStatus, len(p.statuses))
	for name, s := range p.statuses {
		out[name] = s
	}
	return out
}

// Ready reports false only once a probe has run and no provider answered.
func (p *Probe) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.statuses) == 0 {
		return true
	}
	for _, s := range p.statuses {
		if s.Reachable {
			return true
		}
	}
	return false
}

// Unreachable lists providers whose last probe failed, sorted.
func (p *Probe) Unreachable() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var names []string
	for name, s := range p.statuses {
		if !s.Reachable {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
