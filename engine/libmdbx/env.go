package libmdbx

import (
	"os"
	"syscall"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/caffeineduck/mdbsh/mdb"
)

type env struct {
	eng *Engine
	raw *mdbx.Env
}

func (e *env) do(fn func()) { e.eng.thread.do(fn) }

func (e *env) Open(path string, flags uint, mode os.FileMode) (err error) {
	e.do(func() { err = e.raw.Open(path, flags, mode) })
	return err
}

func (e *env) Close() {
	e.do(e.raw.Close)
}

func (e *env) Sync(force bool) (err error) {
	e.do(func() { err = e.raw.Sync(force, false) })
	return err
}

func (e *env) Copy(path string, flags uint) (err error) {
	e.do(func() { err = e.raw.Copy(path, flags) })
	return err
}

func (e *env) Flags() (flags uint, err error) {
	e.do(func() { flags, err = e.raw.Flags() })
	return flags, err
}

func (e *env) SetFlags(flags uint, on bool) (err error) {
	e.do(func() {
		if on {
			err = e.raw.SetFlags(flags)
		} else {
			err = e.raw.UnsetFlags(flags)
		}
	})
	return err
}

// SetMapSize sets the upper bound of the geometry and leaves the rest at
// their defaults.
func (e *env) SetMapSize(size uint64) (err error) {
	e.do(func() { err = e.raw.SetGeometry(-1, -1, int(size), -1, -1, -1) })
	return err
}

func (e *env) SetMaxDBs(n uint64) (err error) {
	e.do(func() { err = e.raw.SetOption(mdbx.OptMaxDB, n) })
	return err
}

func (e *env) SetMaxReaders(n uint64) (err error) {
	e.do(func() { err = e.raw.SetOption(mdbx.OptMaxReaders, n) })
	return err
}

func (e *env) MaxKeySize() (n int) {
	e.do(func() { n = e.raw.MaxKeySize() })
	return n
}

func (e *env) MaxReaders() (n uint64, err error) {
	e.do(func() { n, err = e.raw.GetOption(mdbx.OptMaxReaders) })
	return n, err
}

func (e *env) Path() (path string, err error) {
	e.do(func() { path, err = e.raw.Path() })
	return path, err
}

func (e *env) ReaderCheck() (dead int, err error) {
	e.do(func() { dead, err = e.raw.ReaderCheck() })
	return dead, err
}

func (e *env) BeginTxn(parent mdb.Txn, flags uint) (mdb.Txn, error) {
	var rawParent *mdbx.Txn
	if parent != nil {
		p, ok := parent.(*txn)
		if !ok || p.env != e {
			return nil, syscall.EINVAL
		}
		rawParent = p.raw
	}
	var (
		raw *mdbx.Txn
		err error
	)
	e.do(func() { raw, err = e.raw.BeginTxn(rawParent, flags) })
	if err != nil {
		return nil, err
	}
	return &txn{env: e, raw: raw}, nil
}

func (e *env) CloseDBI(dbi mdb.DBI) {
	e.do(func() { e.raw.CloseDBI(mdbx.DBI(dbi)) })
}
