// Package mdbtest provides an in-memory mdb.Engine for tests.
//
// It keeps ordered keys, sorted duplicates, nested write transactions and
// per-path persistence across environments, and can inject failures into
// the next call of a given method. Status codes match libmdbx.
package mdbtest

import (
	"sync"

	"github.com/caffeineduck/mdbsh/mdb"
)

// Flag and cursor op values, identical to libmdbx.
const (
	NoSubdir uint = 0x4000
	ReadOnly uint = 0x20000
	DupSort  uint = 0x04
	Create   uint = 0x40000

	NoOverwrite uint = 0x10
	NoDupData   uint = 0x20
	Current     uint = 0x40
)

const (
	First uint = iota
	FirstDup
	GetBoth
	GetBothRange
	GetCurrent
	GetMultiple
	Last
	LastDup
	Next
	NextDup
	NextMultiple
	NextNoDup
	Prev
	PrevDup
	PrevNoDup
	Set
	SetKey
	SetRange
)

// MaxKeySize is the key size limit the engine reports and enforces.
const MaxKeySize = 511

var defaultVersion = mdb.Version{Major: 0, Minor: 13, Patch: 6}

// Engine is an in-memory mdb.Engine.
type Engine struct {
	built   mdb.Version
	runtime mdb.Version

	mu     sync.Mutex
	files  map[string]*store
	faults map[string]int
	envs   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithVersions overrides the reported build and runtime versions.
func WithVersions(built, runtime mdb.Version) Option {
	return func(e *Engine) {
		e.built = built
		e.runtime = runtime
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		built:   defaultVersion,
		runtime: defaultVersion,
		files:   make(map[string]*store),
		faults:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailNext makes the next call of method (e.g. "Commit", "Put",
// "BeginTxn") fail with code instead of running.
func (e *Engine) FailNext(method string, code int) {
	e.mu.Lock()
	e.faults[method] = code
	e.mu.Unlock()
}

// Envs reports how many environments were created.
func (e *Engine) Envs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.envs
}

func (e *Engine) fault(method string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	code, ok := e.faults[method]
	if !ok {
		return nil
	}
	delete(e.faults, method)
	return Errno(code)
}

func (e *Engine) NewEnv() (mdb.Env, error) {
	if err := e.fault("NewEnv"); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.envs++
	e.mu.Unlock()
	return &env{eng: e, maxDBs: 0, maxReaders: 126}, nil
}

func (e *Engine) BuildVersion() mdb.Version   { return e.built }
func (e *Engine) RuntimeVersion() mdb.Version { return e.runtime }
func (e *Engine) Code(err error) int          { return code(err) }
func (e *Engine) StrError(code int) string    { return strError(code) }

func (e *Engine) Constants() []mdb.Constant {
	return []mdb.Constant{
		{Name: "NOSUBDIR", Value: int64(NoSubdir)},
		{Name: "RDONLY", Value: int64(ReadOnly)},
		{Name: "DUPSORT", Value: int64(DupSort)},
		{Name: "CREATE", Value: int64(Create)},
		{Name: "NOOVERWRITE", Value: int64(NoOverwrite)},
		{Name: "NODUPDATA", Value: int64(NoDupData)},
		{Name: "CURRENT", Value: int64(Current)},
		{Name: "FIRST", Value: int64(First)},
		{Name: "FIRST_DUP", Value: int64(FirstDup)},
		{Name: "GET_BOTH", Value: int64(GetBoth)},
		{Name: "GET_BOTH_RANGE", Value: int64(GetBothRange)},
		{Name: "GET_CURRENT", Value: int64(GetCurrent)},
		{Name: "LAST", Value: int64(Last)},
		{Name: "LAST_DUP", Value: int64(LastDup)},
		{Name: "NEXT", Value: int64(Next)},
		{Name: "NEXT_DUP", Value: int64(NextDup)},
		{Name: "NEXT_NODUP", Value: int64(NextNoDup)},
		{Name: "PREV", Value: int64(Prev)},
		{Name: "PREV_DUP", Value: int64(PrevDup)},
		{Name: "PREV_NODUP", Value: int64(PrevNoDup)},
		{Name: "SET", Value: int64(Set)},
		{Name: "SET_KEY", Value: int64(SetKey)},
		{Name: "SET_RANGE", Value: int64(SetRange)},
		{Name: "KEYEXIST", Value: KeyExist},
		{Name: "NOTFOUND", Value: NotFound},
		{Name: "DBS_FULL", Value: DBsFull},
		{Name: "INCOMPATIBLE", Value: Incompatible},
		{Name: "BAD_TXN", Value: BadTxn},
		{Name: "BAD_VALSIZE", Value: BadValSize},
		{Name: "BAD_DBI", Value: BadDBI},
		{Name: "BUSY", Value: Busy},
	}
}

func (e *Engine) load(path string) *store {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.files[path]
	if !ok {
		s = newStore()
		e.files[path] = s
	}
	return s
}

func (e *Engine) save(path string, s *store) {
	e.mu.Lock()
	e.files[path] = s
	e.mu.Unlock()
}

func (e *Engine) exists(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.files[path]
	return ok
}
