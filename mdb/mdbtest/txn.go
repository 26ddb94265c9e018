package mdbtest

import (
	"bytes"

	"github.com/caffeineduck/mdbsh/mdb"
)

type txn struct {
	env      *env
	parent   *txn
	child    *txn
	id       uint64
	readonly bool
	done     bool
	reset    bool
	state    *store
}

func (t *txn) usable() error {
	if t.done || t.reset || t.child != nil {
		return Errno(BadTxn)
	}
	return nil
}

func (t *txn) writable() error {
	if err := t.usable(); err != nil {
		return err
	}
	if t.readonly {
		return Errno(EACCES)
	}
	return nil
}

func (t *txn) table(dbi mdb.DBI) (*table, error) {
	name, ok := t.env.name(dbi)
	if !ok {
		return nil, Errno(BadDBI)
	}
	tbl, ok := t.state.tables[name]
	if !ok {
		return nil, Errno(BadDBI)
	}
	return tbl, nil
}

func (t *txn) ID() uint64 { return t.id }

func (t *txn) Commit() error {
	if err := t.env.eng.fault("Commit"); err != nil {
		return err
	}
	if t.done {
		return Errno(BadTxn)
	}
	if t.child != nil {
		if err := t.child.Commit(); err != nil {
			t.Abort()
			return err
		}
	}
	t.done = true
	switch {
	case t.parent != nil:
		t.parent.state = t.state
		t.parent.child = nil
	case !t.readonly:
		t.env.state = t.state
		t.env.txnID = t.id
		t.env.writer = nil
		t.env.eng.save(t.env.path, t.state)
	}
	return nil
}

func (t *txn) Abort() {
	if t.done {
		return
	}
	if t.child != nil {
		t.child.Abort()
	}
	t.done = true
	switch {
	case t.parent != nil:
		t.parent.child = nil
	case !t.readonly:
		t.env.writer = nil
	}
}

func (t *txn) Reset() {
	if t.readonly && !t.done {
		t.reset = true
		t.state = nil
	}
}

func (t *txn) Renew() error {
	if err := t.env.eng.fault("Renew"); err != nil {
		return err
	}
	if !t.readonly || t.done || !t.reset {
		return Errno(EINVAL)
	}
	t.reset = false
	t.state = t.env.state
	t.id = t.env.txnID
	return nil
}

func (t *txn) OpenDBI(name string, flags uint) (mdb.DBI, error) {
	if err := t.env.eng.fault("OpenDBI"); err != nil {
		return 0, err
	}
	if err := t.usable(); err != nil {
		return 0, err
	}
	tbl, ok := t.state.tables[name]
	switch {
	case !ok && flags&Create == 0:
		return 0, Errno(NotFound)
	case !ok && t.readonly:
		return 0, Errno(EACCES)
	case ok && name != "" && flags&DupSort != 0 && !tbl.dupsort():
		return 0, Errno(Incompatible)
	}
	dbi, err := t.env.dbi(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		t.state.tables[name] = &table{flags: flags & DupSort}
	}
	return dbi, nil
}

func (t *txn) Flags(dbi mdb.DBI) (uint, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	tbl, err := t.table(dbi)
	if err != nil {
		return 0, err
	}
	return tbl.flags, nil
}

func (t *txn) Drop(dbi mdb.DBI, del bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	tbl, err := t.table(dbi)
	if err != nil {
		return err
	}
	name, _ := t.env.name(dbi)
	if del && name != "" {
		delete(t.state.tables, name)
		t.env.CloseDBI(dbi)
		return nil
	}
	tbl.entries = nil
	return nil
}

func (t *txn) Put(dbi mdb.DBI, key, data []byte, flags uint) error {
	if err := t.env.eng.fault("Put"); err != nil {
		return err
	}
	if err := t.writable(); err != nil {
		return err
	}
	tbl, err := t.table(dbi)
	if err != nil {
		return err
	}
	if len(key) == 0 || len(key) > MaxKeySize {
		return Errno(BadValSize)
	}
	return tbl.put(key, data, flags)
}

func (t *txn) Get(dbi mdb.DBI, key []byte) ([]byte, error) {
	if err := t.env.eng.fault("Get"); err != nil {
		return nil, err
	}
	if err := t.usable(); err != nil {
		return nil, err
	}
	tbl, err := t.table(dbi)
	if err != nil {
		return nil, err
	}
	i, found := tbl.find(key)
	if !found {
		return nil, Errno(NotFound)
	}
	return tbl.entries[i].vals[0], nil
}

func (t *txn) Del(dbi mdb.DBI, key, data []byte) error {
	if err := t.writable(); err != nil {
		return err
	}
	tbl, err := t.table(dbi)
	if err != nil {
		return err
	}
	return tbl.del(key, data)
}

func (t *txn) OpenCursor(dbi mdb.DBI) (mdb.Cursor, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	if _, err := t.table(dbi); err != nil {
		return nil, err
	}
	return &cursor{txn: t, dbi: dbi}, nil
}

func (t *txn) Cmp(dbi mdb.DBI, a, b []byte) int  { return bytes.Compare(a, b) }
func (t *txn) DCmp(dbi mdb.DBI, a, b []byte) int { return bytes.Compare(a, b) }
