package mdb

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Binding exposes one engine to a script host. It owns the four handle
// namespaces and the error channel; hosts only ever see tokens.
//
// All methods are safe for concurrent use. Calls are serialized by a single
// lock around the whole lookup/engine/allocate sequence.
type Binding struct {
	engine    Engine
	logger    *zap.Logger
	lint      bool
	ops       map[string]opSpec
	constants []Constant

	envs    *namespace
	txns    *namespace
	dbis    *namespace
	cursors *namespace

	status errorChannel
	closed bool
	mu     sync.Mutex
}

// New checks the engine version and builds a binding. A runtime library
// with a different major version, or an older minor version than the one
// the engine adapter was built against, is refused with a fatal-kind error
// before any handle table exists.
func New(engine Engine, opts ...Option) (*Binding, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	built, running := engine.BuildVersion(), engine.RuntimeVersion()
	if !running.Compatible(built) {
		err := fatalf("mdb", "mdb: engine version mismatch: built against %s, running %s", built, running)
		cfg.logger.Error("refusing incompatible engine",
			zap.Stringer("built", built),
			zap.Stringer("runtime", running))
		return nil, err
	}

	b := &Binding{
		engine: engine,
		logger: cfg.logger,
		lint:   cfg.lint,
	}
	b.envs = newNamespace(EnvHandle, b.fatal)
	b.txns = newNamespace(TxnHandle, b.fatal)
	b.dbis = newNamespace(DBIHandle, b.fatal)
	b.cursors = newNamespace(CursorHandle, b.fatal)
	b.ops = newOpTable()
	b.constants = buildConstants(engine)
	return b, nil
}

// Call runs the named operation ("put", "cursor_get", ...). The returned
// Value is always defined: on a user error it is the operation's empty
// result. Array arguments are updated in place.
func (b *Binding) Call(name string, args ...Value) (Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status.reset()
	c := &call{b: b, name: "mdb_" + name, args: args}

	if b.closed {
		err := userErrorf(c.name, "%s: binding is closed", c.name)
		b.status.fail(err)
		return Int(APIError), err
	}
	spec, ok := b.ops[name]
	if !ok {
		err := userErrorf(c.name, "%s: unknown operation", c.name)
		b.status.fail(err)
		return Int(APIError), err
	}
	if len(args) < spec.min {
		err := userErrorf(c.name, "%s: called with too few arguments", c.name)
		b.status.fail(err)
		return spec.empty, err
	}
	if len(args) > spec.max && b.lint {
		b.logger.Warn(c.name+": called with too many arguments",
			zap.Int("nargs", len(args)),
			zap.Int("max", spec.max))
	}

	result, err := spec.fn(c)
	if err != nil {
		b.status.fail(err)
		if err.Kind == KindUser && !err.keep {
			return spec.empty, err
		}
		b.logger.Debug("engine call failed",
			zap.String("op", c.name),
			zap.Int("code", err.Code),
			zap.Error(err.Cause))
		return result, err
	}
	return result, nil
}

// Errno is the status of the most recent call.
func (b *Binding) Errno() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status.code
}

// Message describes the most recent failure, or is empty after a success.
func (b *Binding) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status.message
}

// Ops lists the operation names accepted by Call.
func (b *Binding) Ops() []string {
	names := make([]string, 0, len(b.ops))
	for name := range b.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constants returns the engine's symbolic names plus SUCCESS and API_ERROR.
func (b *Binding) Constants() []Constant {
	out := make([]Constant, len(b.constants))
	copy(out, b.constants)
	return out
}

// Handles lists live tokens of one kind in allocation order.
func (b *Binding) Handles(kind HandleKind) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ns := b.namespace(kind); ns != nil {
		return ns.tokens()
	}
	return nil
}

// Close releases every resource still registered. Each environment goes
// down the same way env_close takes it: cursors first, then top-level
// transactions (nested ones end with their parent), database handles, and
// finally the environment itself. Later calls fail with a user error.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	const op = "mdb_close"
	for _, tok := range b.envs.tokens() {
		rec, _ := b.envs.get(tok)
		env, _ := rec.res.(Env)
		b.closeEnv(op, tok, env)
	}
}

func (b *Binding) namespace(kind HandleKind) *namespace {
	switch kind {
	case EnvHandle:
		return b.envs
	case TxnHandle:
		return b.txns
	case DBIHandle:
		return b.dbis
	case CursorHandle:
		return b.cursors
	}
	return nil
}

func (b *Binding) register(ns *namespace, op string, rec *record) string {
	tok := ns.allocate(op, rec)
	b.logger.Debug("handle allocated", zap.String("op", op), zap.String("handle", tok))
	return tok
}

func (b *Binding) forget(ns *namespace, op, tok string) {
	ns.release(op, tok)
	b.logger.Debug("handle released", zap.String("op", op), zap.String("handle", tok))
}

// envOf returns the environment token a transaction was begun in.
func (b *Binding) envOf(txnTok string) string {
	if rec, ok := b.txns.get(txnTok); ok {
		return rec.env
	}
	return ""
}

// closeEnv tears down everything registered under an environment before
// closing it: the engine frees those objects with the environment, so their
// tokens must not survive it. A nil env only has its token released.
func (b *Binding) closeEnv(op, tok string, env Env) {
	for _, cur := range b.cursors.tokens() {
		rec, _ := b.cursors.get(cur)
		if rec.env != tok {
			continue
		}
		if c, ok := rec.res.(Cursor); ok {
			c.Close()
		}
		b.forget(b.cursors, op, cur)
	}
	for _, txn := range b.txns.tokens() {
		rec, live := b.txns.get(txn)
		if !live || rec.env != tok {
			continue
		}
		if _, parentLive := b.txns.get(rec.parent); rec.parent != "" && parentLive {
			continue
		}
		if t, ok := rec.res.(Txn); ok {
			t.Abort()
		}
		b.endTxn(op, txn)
	}
	for _, dbi := range b.dbis.tokens() {
		if rec, _ := b.dbis.get(dbi); rec.env == tok {
			b.forget(b.dbis, op, dbi)
		}
	}
	if env != nil {
		env.Close()
	}
	b.forget(b.envs, op, tok)
}

// endTxn releases a transaction token together with the tokens of every
// live descendant, deepest first. The engine ends nested transactions with
// their parent, so their handles must not outlive it.
func (b *Binding) endTxn(op, tok string) {
	for _, child := range b.txns.tokens() {
		rec, ok := b.txns.get(child)
		if ok && rec.parent == tok {
			b.endTxn(op, child)
		}
	}
	b.forget(b.txns, op, tok)
}

func (b *Binding) fatal(err *Error) {
	b.logger.Fatal(err.Error(), zap.String("op", err.Op))
	panic(err)
}
