package mdbtest

import (
	"os"

	"github.com/caffeineduck/mdbsh/mdb"
)

const mainDBI mdb.DBI = 1

type env struct {
	eng *Engine

	path       string
	opened     bool
	closed     bool
	flags      uint
	mapSize    uint64
	maxDBs     uint64
	maxReaders uint64

	state  *store
	names  []string // names[dbi-1] is the table behind a DBI
	txnID  uint64
	writer *txn
}

func (e *env) usable() error {
	if !e.opened || e.closed {
		return Errno(EINVAL)
	}
	return nil
}

func (e *env) Open(path string, flags uint, mode os.FileMode) error {
	if err := e.eng.fault("Open"); err != nil {
		return err
	}
	if e.opened || e.closed {
		return Errno(EINVAL)
	}
	if path == "" {
		return Errno(ENOENT)
	}
	if mode == 0 && !e.eng.exists(path) {
		return Errno(ENOENT)
	}
	e.path = path
	e.flags = flags
	e.opened = true
	e.state = e.eng.load(path)
	e.names = []string{""}
	return nil
}

func (e *env) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.writer != nil {
		e.writer.Abort()
	}
}

func (e *env) Sync(force bool) error {
	if err := e.eng.fault("Sync"); err != nil {
		return err
	}
	return e.usable()
}

func (e *env) Copy(path string, flags uint) error {
	if err := e.eng.fault("Copy"); err != nil {
		return err
	}
	if err := e.usable(); err != nil {
		return err
	}
	if e.eng.exists(path) {
		return Errno(EEXIST)
	}
	e.eng.save(path, e.state.clone())
	return nil
}

func (e *env) Flags() (uint, error) {
	if e.closed {
		return 0, Errno(EINVAL)
	}
	return e.flags, nil
}

func (e *env) SetFlags(flags uint, on bool) error {
	if e.closed {
		return Errno(EINVAL)
	}
	if flags&ReadOnly != 0 {
		return Errno(EINVAL)
	}
	if on {
		e.flags |= flags
	} else {
		e.flags &^= flags
	}
	return nil
}

func (e *env) SetMapSize(size uint64) error {
	if e.closed || e.writer != nil {
		return Errno(EINVAL)
	}
	e.mapSize = size
	return nil
}

func (e *env) SetMaxDBs(n uint64) error {
	if e.opened || e.closed {
		return Errno(EINVAL)
	}
	e.maxDBs = n
	return nil
}

func (e *env) SetMaxReaders(n uint64) error {
	if e.opened || e.closed || n == 0 {
		return Errno(EINVAL)
	}
	e.maxReaders = n
	return nil
}

func (e *env) MaxKeySize() int { return MaxKeySize }

func (e *env) MaxReaders() (uint64, error) {
	if e.closed {
		return 0, Errno(EINVAL)
	}
	return e.maxReaders, nil
}

func (e *env) Path() (string, error) {
	if err := e.usable(); err != nil {
		return "", err
	}
	return e.path, nil
}

func (e *env) ReaderCheck() (int, error) {
	if err := e.usable(); err != nil {
		return 0, err
	}
	return 0, nil
}

func (e *env) BeginTxn(parent mdb.Txn, flags uint) (mdb.Txn, error) {
	if err := e.eng.fault("BeginTxn"); err != nil {
		return nil, err
	}
	if err := e.usable(); err != nil {
		return nil, err
	}
	readonly := flags&ReadOnly != 0 || e.flags&ReadOnly != 0

	if parent != nil {
		p, ok := parent.(*txn)
		if !ok || p.env != e || p.done || p.readonly || p.child != nil || readonly {
			return nil, Errno(BadTxn)
		}
		t := &txn{env: e, parent: p, id: p.id, state: p.state.clone()}
		p.child = t
		return t, nil
	}

	if readonly {
		return &txn{env: e, id: e.txnID, readonly: true, state: e.state}, nil
	}
	if e.writer != nil {
		return nil, Errno(Busy)
	}
	t := &txn{env: e, id: e.txnID + 1, state: e.state.clone()}
	e.writer = t
	return t, nil
}

func (e *env) CloseDBI(dbi mdb.DBI) {
	if dbi > mainDBI && int(dbi) <= len(e.names) {
		e.names[dbi-1] = "\x00"
	}
}

// dbi returns the handle for a table name, assigning a new one on first use.
func (e *env) dbi(name string) (mdb.DBI, error) {
	for i, n := range e.names {
		if n == name {
			return mdb.DBI(i + 1), nil
		}
	}
	if uint64(len(e.names)-1) >= e.maxDBs {
		return 0, Errno(DBsFull)
	}
	e.names = append(e.names, name)
	return mdb.DBI(len(e.names)), nil
}

func (e *env) name(dbi mdb.DBI) (string, bool) {
	if dbi < mainDBI || int(dbi) > len(e.names) {
		return "", false
	}
	n := e.names[dbi-1]
	return n, n != "\x00"
}
