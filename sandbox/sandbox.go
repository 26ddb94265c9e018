// Package sandbox runs a single Python script against a key-value engine
// with one call. It is the embedding shortcut over executor: use executor
// directly to reuse compiled modules across runs or to keep sessions.
package sandbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/caffeineduck/mdbsh/engine/libmdbx"
	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/language/python"
	"github.com/caffeineduck/mdbsh/mdb"
)

type Result = executor.Result

type Config struct {
	Timeout time.Duration
	// Engine defaults to libmdbx. A caller-supplied engine is not closed.
	Engine mdb.Engine
	Mounts []hostfunc.Mount
	Lint   bool
	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// Run executes code and releases every handle it opened.
func Run(ctx context.Context, code string, cfg Config) Result {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := cfg.Engine
	if engine == nil {
		e := libmdbx.New(libmdbx.WithLogger(logger))
		defer e.Close()
		engine = e
	}

	exec, err := executor.New(hostfunc.NewRegistry(),
		executor.WithEngine(engine),
		executor.WithLogger(logger))
	if err != nil {
		return Result{Error: err}
	}
	defer exec.Close()

	opts := []executor.Option{
		executor.WithTimeout(cfg.Timeout),
		executor.WithLint(cfg.Lint),
	}
	for _, m := range cfg.Mounts {
		opts = append(opts, executor.WithMount(m.VirtualPath, m.HostPath, m.Mode))
	}
	return exec.Run(ctx, python.New(), code, opts...)
}
