package mdb

func dbiOpen(c *call) (Value, *Error) {
	txn, txnTok, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	name, e := c.bytes(1, "a database name string")
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(2, flagsArg)
	if e != nil {
		return Value{}, e
	}
	dbi, err := txn.OpenDBI(string(name), uint(flags))
	if e := c.engine(err); e != nil {
		return noString, e
	}
	return String(c.b.register(c.b.dbis, c.name, &record{res: dbi, env: c.b.envOf(txnTok)})), nil
}

func dbiClose(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	dbi, tok, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	env.CloseDBI(dbi)
	c.b.forget(c.b.dbis, c.name, tok)
	return Int(Success), nil
}

func dbiFlags(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	flags, err := txn.Flags(dbi)
	if e := c.engine(err); e != nil {
		return noNumber, e
	}
	return Uint(uint64(flags)), nil
}

// drop empties a database, or deletes it and releases its handle when del
// is 1.
func drop(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, tok, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	const delArg = "0 or 1 to empty or delete the database"
	del, e := c.int(2, delArg)
	if e != nil {
		return Value{}, e
	}
	if del != 0 && del != 1 {
		return Value{}, c.badArg(2, delArg)
	}
	if e := c.engine(txn.Drop(dbi, del == 1)); e != nil {
		return Int(int64(e.Code)), e
	}
	if del == 1 {
		c.b.forget(c.b.dbis, c.name, tok)
	}
	return Int(Success), nil
}
