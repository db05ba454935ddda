package counter

import (
	"context"
	"sync/atomic"

	"github.com/vzahanych/weather-compare/internal/config"
	"go.uber.org/zap"
)

// Counter is a process-wide visit counter. Current reads the value without
// changing it; Increment records one visit and returns the new total.
type Counter interface {
	Current(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
	Close()
}

// New returns a Postgres-backed counter when cfg.DatabaseURL is set and an
// in-memory one otherwise.
func New(ctx context.Context, cfg config.CounterConfig, logger *zap.Logger) (Counter, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("Using in-memory visit counter")
		return NewMemory(), nil
	}

	c, err := NewPostgres(ctx, cfg.DatabaseURL, cfg.Name)
	if err != nil {
		return nil, err
	}
	logger.Info("Using Postgres visit counter", zap.String("name", cfg.Name))
	return c, nil
}

type Memory struct {
	n atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Current(context.Context) (int64, error) {
	return m.n.Load(), nil
}

func (m *Memory) Increment(context.Context) (int64, error) {
	return m.n.Add(1), nil
}

func (m *Memory) Close() {}
