package mdb

const (
	keyArg  = "the key string"
	dataArg = "the data string"
)

func put(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	key, e := c.bytes(2, keyArg)
	if e != nil {
		return Value{}, e
	}
	data, e := c.bytes(3, dataArg)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(4, flagsArg)
	if e != nil {
		return Value{}, e
	}
	return c.status(txn.Put(dbi, key, data, uint(flags)))
}

// get copies the value out: engine memory is only valid inside the
// transaction.
func get(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	key, e := c.bytes(2, keyArg)
	if e != nil {
		return Value{}, e
	}
	data, err := txn.Get(dbi, key)
	if e := c.engine(err); e != nil {
		return noString, e
	}
	return Bytes(clone(data)), nil
}

func del(c *call) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	key, e := c.bytes(2, keyArg)
	if e != nil {
		return Value{}, e
	}
	var data []byte
	if c.present(3) {
		if data, e = c.bytes(3, dataArg); e != nil {
			return Value{}, e
		}
	}
	return c.status(txn.Del(dbi, key, data))
}

func cmp(c *call) (Value, *Error) {
	return compare(c, Txn.Cmp)
}

func dcmp(c *call) (Value, *Error) {
	return compare(c, Txn.DCmp)
}

func compare(c *call, fn func(Txn, DBI, []byte, []byte) int) (Value, *Error) {
	txn, _, e := c.txn(0, false)
	if e != nil {
		return Value{}, e
	}
	dbi, _, e := c.dbi(1)
	if e != nil {
		return Value{}, e
	}
	a, e := c.bytes(2, "a string")
	if e != nil {
		return Value{}, e
	}
	b, e := c.bytes(3, "a string")
	if e != nil {
		return Value{}, e
	}
	return Int(int64(fn(txn, dbi, a, b))), nil
}
