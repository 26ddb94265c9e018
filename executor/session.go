package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/mdb"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSessionExited = errors.New("session exited")
)

// Session keeps one interpreter alive across Run calls. Handles opened by
// one command stay valid for the next, until Close releases them all.
type Session struct {
	exec     *Executor
	lang     Language
	cfg      sessionConfig
	registry *hostfunc.Registry
	binding  *mdb.Binding
	logger   *zap.Logger

	stdin       *io.PipeWriter
	stdinReader *io.PipeReader
	stdout      *sessionOutput
	protocol    *sessionProtocol
	calls       *dispatcher
	module      api.Module
	exited      chan struct{}
	cancel      context.CancelFunc

	mu      sync.Mutex
	execMu  sync.Mutex
	closed  bool
	started bool
	exitErr error
}

type sessionConfig struct {
	timeout      time.Duration
	startTimeout time.Duration
	mounts       []hostfunc.Mount
	lint         bool
	env          map[string]string
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		timeout:      30 * time.Second,
		startTimeout: 30 * time.Second,
		env:          make(map[string]string),
	}
}

type SessionOption func(*sessionConfig)

// WithSessionTimeout bounds each Run, not the session lifetime.
func WithSessionTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

func WithSessionStartTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.startTimeout = d
	}
}

func WithSessionMount(virtualPath, hostPath string, mode hostfunc.MountMode) SessionOption {
	return func(c *sessionConfig) {
		c.mounts = append(c.mounts, hostfunc.Mount{
			VirtualPath: virtualPath,
			HostPath:    hostPath,
			Mode:        mode,
		})
	}
}

func WithSessionLint(enabled bool) SessionOption {
	return func(c *sessionConfig) {
		c.lint = enabled
	}
}

// NewSession starts the interpreter and waits until its command loop is ready.
func (e *Executor) NewSession(lang Language, opts ...SessionOption) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.env["MDBSH_SESSION"] = "1"

	registry, binding, err := e.prepareRegistry(cfg.lint, cfg.mounts)
	if err != nil {
		return nil, err
	}

	s := &Session{
		exec:     e,
		lang:     lang,
		cfg:      cfg,
		registry: registry,
		binding:  binding,
		logger:   e.logger.Named("session"),
		exited:   make(chan struct{}),
	}

	if err := s.start(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	compiled, err := s.exec.getCompiled(ctx, s.lang)
	if err != nil {
		return err
	}

	s.stdinReader, s.stdin = io.Pipe()
	s.stdout = newSessionOutput()
	s.calls = newDispatcher(ctx, s.registry, s.stdin, s.logger)
	s.protocol = newSessionProtocol(s.calls)

	initCode := s.lang.SessionInit() + s.lang.WrapCode("")
	args := s.lang.Args(initCode)

	moduleConfig := wazero.NewModuleConfig().
		WithStdout(s.stdout).
		WithStderr(s.protocol).
		WithStdin(s.stdinReader).
		WithArgs(args...).
		WithName("")

	for k, v := range s.cfg.env {
		moduleConfig = moduleConfig.WithEnv(k, v)
	}

	go func() {
		mod, err := s.exec.runtime.InstantiateModule(ctx, compiled, moduleConfig)
		s.mu.Lock()
		if mod != nil {
			s.module = mod
		}
		if err != nil && !isCleanExit(err) {
			s.exitErr = fmt.Errorf("session exited: %w", err)
		} else {
			s.exitErr = ErrSessionExited
		}
		s.mu.Unlock()
		close(s.exited)
	}()

	select {
	case <-s.protocol.Ready():
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		s.logger.Debug("session ready", zap.String("language", s.lang.Name()))
		return nil
	case <-s.exited:
		return s.exitError()
	case <-time.After(s.cfg.startTimeout):
		return errors.New("session start timeout")
	}
}

func (s *Session) exitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

// Binding returns the session's mdb binding, or nil when the executor has
// no engine.
func (s *Session) Binding() *mdb.Binding {
	return s.binding
}

type execCommand struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
}

// Run executes code in the session. Runs are serialized.
func (s *Session) Run(ctx context.Context, code string) Result {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	start := time.Now()

	s.mu.Lock()
	closed, started := s.closed, s.started
	s.mu.Unlock()
	if closed {
		return Result{Error: ErrSessionClosed, Duration: time.Since(start)}
	}
	if !started {
		return Result{Error: errors.New("session not started"), Duration: time.Since(start)}
	}
	select {
	case <-s.exited:
		return Result{Error: s.exitError(), Duration: time.Since(start)}
	default:
	}

	if s.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.timeout)
		defer cancel()
	}

	s.stdout.Reset()
	s.protocol.ResetExec()

	cmdBytes, err := json.Marshal(execCommand{Type: "exec", Code: code})
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}
	cmdBytes = append(cmdBytes, '\n')

	if _, err := s.stdin.Write(cmdBytes); err != nil {
		return Result{Error: fmt.Errorf("write command: %w", err), Duration: time.Since(start)}
	}

	output := func() string { return s.stdout.String() + s.protocol.Stderr() }
	select {
	case <-ctx.Done():
		return Result{
			Output:   output(),
			Error:    fmt.Errorf("timeout after %v", s.cfg.timeout),
			Duration: time.Since(start),
		}
	case <-s.exited:
		return Result{Output: output(), Error: s.exitError(), Duration: time.Since(start)}
	case execErr := <-s.protocol.Done():
		return Result{Output: output(), Error: execErr, Duration: time.Since(start)}
	}
}

// Close stops the interpreter and releases every handle the session holds.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	mod := s.module
	s.mu.Unlock()

	var err error
	// Closing the pipe gives the guest EOF on its command loop.
	if s.stdinReader != nil {
		err = multierr.Append(err, s.stdinReader.Close())
	}
	if s.stdin != nil {
		err = multierr.Append(err, s.stdin.Close())
	}
	if mod != nil {
		err = multierr.Append(err, ignoreExit(mod.Close(context.Background())))
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.calls != nil {
		s.calls.stop()
	}
	if s.binding != nil {
		s.binding.Close()
	}
	return err
}

func ignoreExit(err error) error {
	if err == nil || isCleanExit(err) {
		return nil
	}
	return err
}

type sessionOutput struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func newSessionOutput() *sessionOutput {
	return &sessionOutput{}
}

func (o *sessionOutput) Write(data []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(data)
}

func (o *sessionOutput) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func (o *sessionOutput) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.Reset()
}

// sessionProtocol handles the session's stderr: ready and done frames
// drive the command loop, call frames go to the dispatcher.
type sessionProtocol struct {
	calls *dispatcher

	buf        bytes.Buffer
	realStderr bytes.Buffer

	readyCh chan struct{}
	doneCh  chan error
	ready   bool

	mu sync.Mutex
}

func newSessionProtocol(calls *dispatcher) *sessionProtocol {
	return &sessionProtocol{
		calls:   calls,
		readyCh: make(chan struct{}),
		doneCh:  make(chan error, 1),
	}
}

func (p *sessionProtocol) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Write(data)
	for _, f := range splitFrames(&p.buf, &p.realStderr) {
		switch f.kind {
		case frameCall:
			p.calls.submit(f.payload)
		case frameReady:
			if !p.ready {
				p.ready = true
				close(p.readyCh)
			}
		case frameDone:
			p.finish(nil)
		case frameError:
			p.finish(errors.New(f.payload))
		}
	}
	return len(data), nil
}

func (p *sessionProtocol) finish(err error) {
	select {
	case p.doneCh <- err:
	default:
	}
}

func (p *sessionProtocol) Ready() <-chan struct{} {
	return p.readyCh
}

func (p *sessionProtocol) Done() <-chan error {
	return p.doneCh
}

// ResetExec clears output and any stale completion left by a timed out run.
func (p *sessionProtocol) ResetExec() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.realStderr.Reset()
	select {
	case <-p.doneCh:
	default:
	}
}

func (p *sessionProtocol) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.realStderr.String()
}
