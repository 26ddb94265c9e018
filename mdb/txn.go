package mdb

func txnBegin(c *call) (Value, *Error) {
	env, envTok, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	parent, parentTok, e := c.txn(1, true)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(2, flagsArg)
	if e != nil {
		return Value{}, e
	}
	txn, err := env.BeginTxn(parent, uint(flags))
	if e := c.engine(err); e != nil {
		return noString, e
	}
	tok := c.b.register(c.b.txns, c.name, &record{res: txn, parent: parentTok, env: envTok})
	return String(tok), nil
}

func txnID(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	return Uint(txn.ID()), nil
}

// txnCommit keeps the token when the engine refuses the commit. The caller
// is expected to abort it, which always releases.
func txnCommit(c *call) (Value, *Error) {
	txn, tok, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	if e := c.engine(txn.Commit()); e != nil {
		return Int(int64(e.Code)), e
	}
	c.b.endTxn(c.name, tok)
	return Int(Success), nil
}

func txnAbort(c *call) (Value, *Error) {
	txn, tok, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	txn.Abort()
	c.b.endTxn(c.name, tok)
	return Int(Success), nil
}

func txnReset(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	txn.Reset()
	return Int(Success), nil
}

func txnRenew(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	return c.status(txn.Renew())
}
