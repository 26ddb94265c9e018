package mdb

// Subscripts of the cursor_get key/data array.
const (
	KeySubscript  = "0"
	DataSubscript = "1"
)

func cursorOpen(c *call) (Value, *Error) {
	txn, txnTok, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	cur, err := txn.OpenCursor(dbi)
	if e := c.engine(err); e != nil {
		return noString, e
	}
	return String(c.b.register(c.b.cursors, c.name, &record{res: cur, env: c.b.envOf(txnTok)})), nil
}

func cursorClose(c *call) (Value, *Error) {
	cur, tok, e := c.cursor(0)
	if e != nil {
		return Value{}, e
	}
	cur.Close()
	c.b.forget(c.b.cursors, c.name, tok)
	return Int(Success), nil
}

// cursorRenew rebinds a cursor to another transaction; the token is kept.
func cursorRenew(c *call) (Value, *Error) {
	txn, txnTok, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	cur, curTok, e := c.cursor(1)
	if e != nil {
		return Value{}, e
	}
	if e := c.engine(cur.Renew(txn)); e != nil {
		return Int(int64(e.Code)), e
	}
	if rec, ok := c.b.cursors.get(curTok); ok {
		rec.env = c.b.envOf(txnTok)
	}
	return Int(Success), nil
}

func cursorPut(c *call) (Value, *Error) {
	cur, _, e := c.cursor(0)
	if e != nil {
		return Value{}, e
	}
	key, e := c.bytes(1, keyArg)
	if e != nil {
		return Value{}, e
	}
	data, e := c.bytes(2, dataArg)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(3, flagsArg)
	if e != nil {
		return Value{}, e
	}
	return c.status(cur.Put(key, data, uint(flags)))
}

func cursorDel(c *call) (Value, *Error) {
	cur, _, e := c.cursor(0)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(1, flagsArg)
	if e != nil {
		return Value{}, e
	}
	return c.status(cur.Del(uint(flags)))
}

func cursorCount(c *call) (Value, *Error) {
	cur, _, e := c.cursor(0)
	if e != nil {
		return Value{}, e
	}
	n, err := cur.Count()
	if e := c.engine(err); e != nil {
		return noNumber, e
	}
	return Uint(n), nil
}

// cursorGet reads the optional input key and data from kv["0"] and kv["1"]
// and overwrites both with the pair the cursor lands on. On failure kv is
// left untouched.
func cursorGet(c *call) (Value, *Error) {
	cur, _, e := c.cursor(0)
	if e != nil {
		return Value{}, e
	}
	kv, e := c.array(1, "an array")
	if e != nil {
		return Value{}, e
	}
	op, e := c.uint(2, "an unsigned integer cursor op")
	if e != nil {
		return Value{}, e
	}

	key := element(kv, KeySubscript)
	data := element(kv, DataSubscript)
	k, d, err := cur.Get(key, data, uint(op))
	if e := c.engine(err); e != nil {
		return Int(int64(e.Code)), e
	}
	kv.Set(KeySubscript, Bytes(clone(k)))
	kv.Set(DataSubscript, Bytes(clone(d)))
	return Int(Success), nil
}

// element reads a scalar array element as bytes. Missing elements and
// nested arrays read as absent.
func element(a *Array, sub string) []byte {
	v, ok := a.Get(sub)
	if !ok {
		return nil
	}
	switch v.Kind() {
	case BytesKind:
		return v.Bytes()
	case NumberKind:
		return []byte(formatNumber(v.Num()))
	}
	return nil
}
