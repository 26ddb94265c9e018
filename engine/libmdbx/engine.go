// Package libmdbx implements mdb.Engine on top of libmdbx through
// github.com/erigontech/mdbx-go.
//
// libmdbx ties a write transaction to the OS thread that started it, while
// binding calls may arrive on any goroutine. Every engine call is therefore
// funnelled through one goroutine locked to its thread for the lifetime of
// the Engine.
package libmdbx

import (
	"errors"
	"strconv"
	"strings"
	"syscall"

	"github.com/erigontech/mdbx-go/mdbx"
	"go.uber.org/zap"

	"github.com/caffeineduck/mdbsh/mdb"
)

// Header is the libmdbx version the adapter is compiled against. mdbx.h
// only defines major and minor, so Patch is always 0.
var Header = mdb.Version{Major: int(mdbx.Major), Minor: int(mdbx.Minor)}

// Linked is the version of the libmdbx actually linked in, read from its
// version info. It falls back to Header if the describe string is not a
// release tag.
var Linked = linkedVersion(mdbx.Version())

// linkedVersion parses a git describe string such as "v0.14.1-0-ga13147d1".
func linkedVersion(describe string) mdb.Version {
	tag, _, _ := strings.Cut(strings.TrimPrefix(describe, "v"), "-")
	parts := strings.Split(tag, ".")
	if len(parts) != 3 {
		return Header
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Header
		}
		nums[i] = n
	}
	return mdb.Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}
}

// Engine is the libmdbx engine.
type Engine struct {
	label   mdbx.Label
	logger  *zap.Logger
	built   mdb.Version
	runtime mdb.Version
	thread  *thread
}

// Option configures an Engine.
type Option func(*Engine)

// WithLabel names environments in libmdbx debug output.
func WithLabel(label string) Option {
	return func(e *Engine) {
		e.label = mdbx.Label(label)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRuntimeVersion overrides the version reported for the linked library.
// By default it is Linked.
func WithRuntimeVersion(v mdb.Version) Option {
	return func(e *Engine) {
		e.runtime = v
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		label:   mdbx.Label("mdbsh"),
		logger:  zap.NewNop(),
		built:   Header,
		runtime: Linked,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.thread = newThread()
	return e
}

// Close stops the engine thread. Environments must be closed first.
func (e *Engine) Close() {
	e.thread.stop()
}

func (e *Engine) NewEnv() (mdb.Env, error) {
	var (
		raw *mdbx.Env
		err error
	)
	e.thread.do(func() {
		raw, err = mdbx.NewEnv(e.label)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("environment created", zap.String("label", string(e.label)))
	return &env{eng: e, raw: raw}, nil
}

func (e *Engine) BuildVersion() mdb.Version   { return e.built }
func (e *Engine) RuntimeVersion() mdb.Version { return e.runtime }

// Code unwraps mdbx-go errors to the libmdbx status. Errors that carry no
// status are reported as EINVAL.
func (e *Engine) Code(err error) int {
	if err == nil {
		return mdb.Success
	}
	var op *mdbx.OpError
	if errors.As(err, &op) && op.Errno != nil {
		err = op.Errno
	}
	var en mdbx.Errno
	if errors.As(err, &en) {
		return int(en)
	}
	var se syscall.Errno
	if errors.As(err, &se) {
		return int(se)
	}
	return int(syscall.EINVAL)
}

func (e *Engine) StrError(code int) string {
	if code > 0 {
		return syscall.Errno(code).Error()
	}
	return mdbx.Errno(code).Error()
}

func (e *Engine) Constants() []mdb.Constant {
	out := make([]mdb.Constant, len(constants))
	copy(out, constants)
	return out
}

var _ mdb.Engine = (*Engine)(nil)
