package mdbtest

import (
	"bytes"

	"github.com/caffeineduck/mdbsh/mdb"
)

const lastVal = -1

// cursor remembers the record it sits on by key and value, so it survives
// writes through its own or other cursors in the same transaction. After the
// record is deleted the cursor sits just before its successor.
type cursor struct {
	txn    *txn
	dbi    mdb.DBI
	closed bool

	set      bool
	key, val []byte
}

func (c *cursor) table() (*table, error) {
	if c.closed {
		return nil, Errno(EINVAL)
	}
	if err := c.txn.usable(); err != nil {
		return nil, err
	}
	return c.txn.table(c.dbi)
}

// position returns the entry and value index under the cursor. When the
// record is gone, exact is false and (i, j) is where it would be inserted.
func (c *cursor) position(t *table) (i, j int, keyFound, exact bool) {
	i, keyFound = t.find(c.key)
	if !keyFound {
		return i, 0, false, false
	}
	if !t.dupsort() {
		return i, 0, true, true
	}
	j, exact = t.findVal(i, c.val)
	return i, j, true, exact
}

func (c *cursor) at(t *table, i, j int) ([]byte, []byte, error) {
	if i < 0 || i >= len(t.entries) {
		return nil, nil, Errno(NotFound)
	}
	vals := t.entries[i].vals
	if j == lastVal {
		j = len(vals) - 1
	}
	if j < 0 || j >= len(vals) {
		return nil, nil, Errno(NotFound)
	}
	c.set = true
	c.key, c.val = t.entries[i].key, vals[j]
	return c.key, c.val, nil
}

func (c *cursor) Close() { c.closed = true }

func (c *cursor) Renew(tx mdb.Txn) error {
	t, ok := tx.(*txn)
	if !ok || c.closed || !t.readonly || t.env != c.txn.env {
		return Errno(EINVAL)
	}
	if err := t.usable(); err != nil {
		return err
	}
	c.txn = t
	c.set = false
	c.key, c.val = nil, nil
	return nil
}

func (c *cursor) Get(key, data []byte, op uint) ([]byte, []byte, error) {
	if err := c.txn.env.eng.fault("CursorGet"); err != nil {
		return nil, nil, err
	}
	t, err := c.table()
	if err != nil {
		return nil, nil, err
	}
	switch op {
	case First:
		return c.at(t, 0, 0)
	case Last:
		return c.at(t, len(t.entries)-1, lastVal)
	case Set, SetKey:
		i, found := t.find(key)
		if !found {
			return nil, nil, Errno(NotFound)
		}
		return c.at(t, i, 0)
	case SetRange:
		i, _ := t.find(key)
		return c.at(t, i, 0)
	case GetBoth, GetBothRange:
		i, found := t.find(key)
		if !found {
			return nil, nil, Errno(NotFound)
		}
		if !t.dupsort() {
			if !bytes.Equal(t.entries[i].vals[0], data) {
				return nil, nil, Errno(NotFound)
			}
			return c.at(t, i, 0)
		}
		j, exact := t.findVal(i, data)
		if op == GetBoth && !exact {
			return nil, nil, Errno(NotFound)
		}
		return c.at(t, i, j)
	}

	if !c.set {
		switch op {
		case Next, NextNoDup:
			return c.at(t, 0, 0)
		case Prev, PrevNoDup:
			return c.at(t, len(t.entries)-1, lastVal)
		}
		return nil, nil, Errno(EINVAL)
	}
	i, j, keyFound, exact := c.position(t)

	switch op {
	case GetCurrent:
		if !exact {
			return nil, nil, Errno(NotFound)
		}
		return c.at(t, i, j)
	case FirstDup, LastDup:
		if !keyFound {
			return nil, nil, Errno(NotFound)
		}
		if op == FirstDup {
			return c.at(t, i, 0)
		}
		return c.at(t, i, lastVal)
	case Next:
		if !keyFound {
			return c.at(t, i, 0)
		}
		if exact {
			j++
		}
		if t.dupsort() && j < len(t.entries[i].vals) {
			return c.at(t, i, j)
		}
		return c.at(t, i+1, 0)
	case NextDup:
		if !keyFound || !t.dupsort() {
			return nil, nil, Errno(NotFound)
		}
		if exact {
			j++
		}
		return c.at(t, i, j)
	case NextNoDup:
		if !keyFound {
			return c.at(t, i, 0)
		}
		return c.at(t, i+1, 0)
	case Prev:
		if keyFound && t.dupsort() && j > 0 {
			return c.at(t, i, j-1)
		}
		return c.at(t, i-1, lastVal)
	case PrevDup:
		if !keyFound || !t.dupsort() || j == 0 {
			return nil, nil, Errno(NotFound)
		}
		return c.at(t, i, j-1)
	case PrevNoDup:
		return c.at(t, i-1, lastVal)
	}
	return nil, nil, Errno(EINVAL)
}

func (c *cursor) Put(key, data []byte, flags uint) error {
	if err := c.txn.env.eng.fault("CursorPut"); err != nil {
		return err
	}
	if c.closed {
		return Errno(EINVAL)
	}
	if err := c.txn.writable(); err != nil {
		return err
	}
	t, err := c.txn.table(c.dbi)
	if err != nil {
		return err
	}
	if len(key) == 0 || len(key) > MaxKeySize {
		return Errno(BadValSize)
	}
	if flags&Current != 0 {
		if !c.set || !bytes.Equal(key, c.key) {
			return Errno(EINVAL)
		}
		if _, _, _, exact := c.position(t); !exact {
			return Errno(NotFound)
		}
		if t.dupsort() {
			if err := t.del(c.key, c.val); err != nil {
				return err
			}
		}
		flags &^= Current | NoOverwrite
	}
	if err := t.put(key, data, flags); err != nil {
		return err
	}
	i, _ := t.find(key)
	if t.dupsort() {
		j, _ := t.findVal(i, data)
		_, _, err = c.at(t, i, j)
		return err
	}
	_, _, err = c.at(t, i, 0)
	return err
}

func (c *cursor) Del(flags uint) error {
	if c.closed || !c.set {
		return Errno(EINVAL)
	}
	if err := c.txn.writable(); err != nil {
		return err
	}
	t, err := c.txn.table(c.dbi)
	if err != nil {
		return err
	}
	if _, _, _, exact := c.position(t); !exact {
		return Errno(NotFound)
	}
	if flags&NoDupData != 0 || !t.dupsort() {
		return t.del(c.key, nil)
	}
	return t.del(c.key, c.val)
}

func (c *cursor) Count() (uint64, error) {
	t, err := c.table()
	if err != nil {
		return 0, err
	}
	if !c.set {
		return 0, Errno(EINVAL)
	}
	i, _, _, exact := c.position(t)
	if !exact {
		return 0, Errno(NotFound)
	}
	return uint64(len(t.entries[i].vals)), nil
}
