package mdb

import (
	"strconv"
)

// call carries one invocation through validation and execution.
type call struct {
	b    *Binding
	name string // host-visible, e.g. "mdb_put"
	args []Value
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func (c *call) badArg(pos int, what string) *Error {
	return userErrorf(c.name, "%s: %s argument must be %s", c.name, ordinal(pos+1), what)
}

func (c *call) present(pos int) bool {
	return pos < len(c.args)
}

// int requires an integral number.
func (c *call) int(pos int, what string) (int64, *Error) {
	if !c.present(pos) || c.args[pos].Kind() != NumberKind {
		return 0, c.badArg(pos, what)
	}
	i, ok := exactInt(c.args[pos].Num())
	if !ok {
		return 0, c.badArg(pos, what)
	}
	return i, nil
}

// uint requires an integral, non-negative number.
func (c *call) uint(pos int, what string) (uint64, *Error) {
	i, err := c.int(pos, what)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, c.badArg(pos, what)
	}
	return uint64(i), nil
}

// bytes accepts a byte string, or a number rendered as awk would.
func (c *call) bytes(pos int, what string) ([]byte, *Error) {
	if !c.present(pos) {
		return nil, c.badArg(pos, what)
	}
	switch v := c.args[pos]; v.Kind() {
	case BytesKind:
		return v.Bytes(), nil
	case NumberKind:
		return []byte(formatNumber(v.Num())), nil
	}
	return nil, c.badArg(pos, what)
}

func (c *call) array(pos int, what string) (*Array, *Error) {
	if !c.present(pos) || c.args[pos].Kind() != ArrayKind {
		return nil, c.badArg(pos, what)
	}
	return c.args[pos].Array(), nil
}

// Handle lookups. A resource of the wrong dynamic type in a table is
// corruption, not a user error.

func (c *call) env(pos int) (Env, string, *Error) {
	rec, tok, err := c.b.envs.lookup(c.name, c.args, pos, false)
	if err != nil {
		return nil, "", err
	}
	env, ok := rec.res.(Env)
	if !ok {
		c.b.fatal(fatalf(c.name, "%s: corruption detected: env handle `%s' holds %T", c.name, tok, rec.res))
	}
	return env, tok, nil
}

func (c *call) txn(pos int, emptyOK bool) (Txn, string, *Error) {
	rec, tok, err := c.b.txns.lookup(c.name, c.args, pos, emptyOK)
	if err != nil || rec == nil {
		return nil, "", err
	}
	txn, ok := rec.res.(Txn)
	if !ok {
		c.b.fatal(fatalf(c.name, "%s: corruption detected: txn handle `%s' holds %T", c.name, tok, rec.res))
	}
	return txn, tok, nil
}

func (c *call) dbi(pos int) (DBI, string, *Error) {
	rec, tok, err := c.b.dbis.lookup(c.name, c.args, pos, false)
	if err != nil {
		return 0, "", err
	}
	dbi, ok := rec.res.(DBI)
	if !ok {
		c.b.fatal(fatalf(c.name, "%s: corruption detected: dbi handle `%s' holds %T", c.name, tok, rec.res))
	}
	return dbi, tok, nil
}

func (c *call) cursor(pos int) (Cursor, string, *Error) {
	rec, tok, err := c.b.cursors.lookup(c.name, c.args, pos, false)
	if err != nil {
		return nil, "", err
	}
	cur, ok := rec.res.(Cursor)
	if !ok {
		c.b.fatal(fatalf(c.name, "%s: corruption detected: cursor handle `%s' holds %T", c.name, tok, rec.res))
	}
	return cur, tok, nil
}

// engine converts an engine error into an engine-kind *Error, or nil.
func (c *call) engine(err error) *Error {
	if err == nil {
		return nil
	}
	code := c.b.engine.Code(err)
	if code == Success {
		return nil
	}
	return engineError(c.name, code, err)
}
