package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"

	"github.com/caffeineduck/mdbsh/engine/libmdbx"
	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/language/python"
	"github.com/caffeineduck/mdbsh/mdb"
)

var rootCmd = &cobra.Command{
	Use:   "mdbsh [file]",
	Short: "Script an embedded key-value engine from sandboxed Python",
	Long: `mdbsh - Drive an LMDB-family key-value engine from Python running in WebAssembly.

Scripts get an "mdb" module with one function per engine operation. Engine
handles are opaque tokens ("env0", "txn3"); failures are reported in-band
through mdb.errno and mdb.errmsg. Environment paths can be confined to
mounted host directories with --mount.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
	RunE:              runRun, // Default to run command behavior
}

// logger is built from --log-level before any command runs.
var logger = zap.NewNop()

// newEngine is replaced in tests that must not depend on cgo.
var newEngine = func(l *zap.Logger) (mdb.Engine, func()) {
	e := libmdbx.New(libmdbx.WithLogger(l.Named("libmdbx")))
	return e, e.Close
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context, which
// interrupts a running script and shuts down the server.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable compilation cache")

	// Add run-specific flags to root (for default command)
	addRunFlags(rootCmd)
}

func setupLogger(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	l, err := buildLogger(level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	return cfg.Build()
}

// newExecutor wires the engine into an executor. The returned func closes both.
func newExecutor(cmd *cobra.Command, extra ...executor.ExecutorOption) (*executor.Executor, func(), error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")

	engine, closeEngine := newEngine(logger)
	opts := []executor.ExecutorOption{
		executor.WithEngine(engine),
		executor.WithLogger(logger),
	}
	if !noCache {
		opts = append(opts, executor.WithDiskCache())
	}
	opts = append(opts, extra...)

	exec, err := executor.New(hostfunc.NewRegistry(), opts...)
	if err != nil {
		closeEngine()
		return nil, nil, err
	}
	return exec, func() {
		if err := exec.Close(); err != nil {
			logger.Warn("close executor", zap.Error(err))
		}
		closeEngine()
	}, nil
}

func getLanguage(langFlag string, filename string) (executor.Language, error) {
	lang := langFlag

	if lang == "" && filename != "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".py":
			lang = "python"
		}
	}
	if lang == "" {
		lang = "python"
	}

	switch lang {
	case "python", "py":
		return python.New(), nil
	default:
		return nil, fmt.Errorf("unknown language %q: only python is supported", lang)
	}
}

func parseMounts(specs []string) ([]hostfunc.Mount, error) {
	mounts := make([]hostfunc.Mount, 0, len(specs))
	for _, spec := range specs {
		m, err := hostfunc.ParseMount(spec)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}

func parseMemoryLimit(s string) (uint32, error) {
	switch strings.ToLower(s) {
	case "", "0", "none":
		return 0, nil
	case "16mb":
		return executor.MemoryLimit16MB, nil
	case "64mb":
		return executor.MemoryLimit64MB, nil
	case "256mb":
		return executor.MemoryLimit256MB, nil
	case "1gb":
		return executor.MemoryLimit1GB, nil
	default:
		return 0, fmt.Errorf("invalid memory limit %q (expected 16mb, 64mb, 256mb, 1gb or none)", s)
	}
}
