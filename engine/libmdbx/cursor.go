package libmdbx

import (
	"syscall"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/caffeineduck/mdbsh/mdb"
)

type cursor struct {
	env *env
	raw *mdbx.Cursor
}

func (c *cursor) do(fn func()) { c.env.do(fn) }

func (c *cursor) Close() {
	c.do(c.raw.Close)
}

func (c *cursor) Renew(tx mdb.Txn) (err error) {
	t, ok := tx.(*txn)
	if !ok || t.env != c.env {
		return syscall.EINVAL
	}
	c.do(func() { err = c.raw.Renew(t.raw) })
	return err
}

func (c *cursor) Put(key, data []byte, flags uint) (err error) {
	c.do(func() { err = c.raw.Put(key, data, flags) })
	return err
}

func (c *cursor) Del(flags uint) (err error) {
	c.do(func() { err = c.raw.Del(flags) })
	return err
}

func (c *cursor) Count() (n uint64, err error) {
	c.do(func() { n, err = c.raw.Count() })
	return n, err
}

func (c *cursor) Get(key, data []byte, op uint) (k, v []byte, err error) {
	c.do(func() { k, v, err = c.raw.Get(key, data, op) })
	return k, v, err
}
