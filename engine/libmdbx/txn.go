package libmdbx

import (
	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/caffeineduck/mdbsh/mdb"
)

type txn struct {
	env *env
	raw *mdbx.Txn
}

func (t *txn) do(fn func()) { t.env.do(fn) }

func (t *txn) ID() (id uint64) {
	t.do(func() { id = t.raw.ID() })
	return id
}

// Commit drops the latency report mdbx-go returns alongside the status.
func (t *txn) Commit() (err error) {
	t.do(func() { _, err = t.raw.Commit() })
	return err
}

func (t *txn) Abort() {
	t.do(t.raw.Abort)
}

func (t *txn) Reset() {
	t.do(t.raw.Reset)
}

func (t *txn) Renew() (err error) {
	t.do(func() { err = t.raw.Renew() })
	return err
}

// OpenDBI maps the empty name to the main database.
func (t *txn) OpenDBI(name string, flags uint) (dbi mdb.DBI, err error) {
	t.do(func() {
		var raw mdbx.DBI
		if name == "" {
			raw, err = t.raw.OpenRoot(flags)
		} else {
			raw, err = t.raw.OpenDBI(name, flags, nil, nil)
		}
		dbi = mdb.DBI(raw)
	})
	return dbi, err
}

func (t *txn) Flags(dbi mdb.DBI) (flags uint, err error) {
	t.do(func() { flags, err = t.raw.Flags(mdbx.DBI(dbi)) })
	return flags, err
}

func (t *txn) Drop(dbi mdb.DBI, del bool) (err error) {
	t.do(func() { err = t.raw.Drop(mdbx.DBI(dbi), del) })
	return err
}

func (t *txn) Put(dbi mdb.DBI, key, data []byte, flags uint) (err error) {
	t.do(func() { err = t.raw.Put(mdbx.DBI(dbi), key, data, flags) })
	return err
}

func (t *txn) Get(dbi mdb.DBI, key []byte) (data []byte, err error) {
	t.do(func() { data, err = t.raw.Get(mdbx.DBI(dbi), key) })
	return data, err
}

func (t *txn) Del(dbi mdb.DBI, key, data []byte) (err error) {
	t.do(func() { err = t.raw.Del(mdbx.DBI(dbi), key, data) })
	return err
}

func (t *txn) OpenCursor(dbi mdb.DBI) (mdb.Cursor, error) {
	var (
		raw *mdbx.Cursor
		err error
	)
	t.do(func() { raw, err = t.raw.OpenCursor(mdbx.DBI(dbi)) })
	if err != nil {
		return nil, err
	}
	return &cursor{env: t.env, raw: raw}, nil
}

func (t *txn) Cmp(dbi mdb.DBI, a, b []byte) (n int) {
	t.do(func() { n = t.raw.Cmp(mdbx.DBI(dbi), a, b) })
	return n
}

func (t *txn) DCmp(dbi mdb.DBI, a, b []byte) (n int) {
	t.do(func() { n = t.raw.DCmp(mdbx.DBI(dbi), a, b) })
	return n
}
