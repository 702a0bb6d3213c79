package sluice

import (
	"github.com/rs/zerolog"

	"github.com/sluice-web/sluice/config"
	"github.com/sluice-web/sluice/executor"
	"github.com/sluice-web/sluice/proc"
	"github.com/sluice-web/sluice/router"
)

// New wires a Handler with the stock collaborators: the default interceptor
// pipeline and a goroutine-per-request executor. Embedders with their own
// pipeline, executor or reuse policy should use NewHandler directly.
func New(cfg *config.Config, resolver router.Resolver) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}

	return NewHandler(cfg, proc.Default(cfg), resolver, executor.Go{})
}

// NewPooled wires a Handler whose requests run on a bounded worker pool sized
// from the config. The returned stop function winds the pool down.
func NewPooled(cfg *config.Config, resolver router.Resolver, log zerolog.Logger) (*Handler, func()) {
	if cfg == nil {
		cfg = config.Default()
	}

	pool := executor.NewPool(cfg.Workers.PoolSize, cfg.Workers.MaxIdle, log)
	pool.Start()

	h := NewHandler(cfg, proc.Default(cfg), resolver, pool).
		WithLogger(log)

	return h, pool.Stop
}
