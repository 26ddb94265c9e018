package mdb

import "os"

func envCreate(c *call) (Value, *Error) {
	env, err := c.b.engine.NewEnv()
	if e := c.engine(err); e != nil {
		return noString, e
	}
	return String(c.b.register(c.b.envs, c.name, &record{res: env})), nil
}

func envOpen(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	path, e := c.bytes(1, pathArg)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(2, flagsArg)
	if e != nil {
		return Value{}, e
	}
	mode, e := c.uint(3, "an unsigned integer file mode")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.Open(string(path), uint(flags), os.FileMode(mode)))
}

func envClose(c *call) (Value, *Error) {
	env, tok, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	c.b.closeEnv(c.name, tok, env)
	return Int(Success), nil
}

func envSync(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	force, e := c.int(1, "an integer force value")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.Sync(force != 0))
}

func envCopy(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	path, e := c.bytes(1, pathArg)
	if e != nil {
		return Value{}, e
	}
	return c.status(env.Copy(string(path), 0))
}

func envCopy2(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	path, e := c.bytes(1, pathArg)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(2, flagsArg)
	if e != nil {
		return Value{}, e
	}
	return c.status(env.Copy(string(path), uint(flags)))
}

func envGetFlags(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	flags, err := env.Flags()
	if e := c.engine(err); e != nil {
		return noNumber, e
	}
	return Uint(uint64(flags)), nil
}

func envSetFlags(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	flags, e := c.uint(1, flagsArg)
	if e != nil {
		return Value{}, e
	}
	onoff, e := c.int(2, "an integer onoff value")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.SetFlags(uint(flags), onoff != 0))
}

func envSetMapSize(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	size, e := c.uint(1, "an unsigned integer size value")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.SetMapSize(size))
}

func envSetMaxDBs(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	n, e := c.uint(1, "an unsigned integer number of databases")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.SetMaxDBs(n))
}

func envSetMaxReaders(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	n, e := c.uint(1, "an unsigned integer number of readers")
	if e != nil {
		return Value{}, e
	}
	return c.status(env.SetMaxReaders(n))
}

// envGetMaxKeySize cannot fail once the handle resolves.
func envGetMaxKeySize(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	return Int(int64(env.MaxKeySize())), nil
}

func envGetMaxReaders(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	n, err := env.MaxReaders()
	if e := c.engine(err); e != nil {
		return noNumber, e
	}
	return Uint(n), nil
}

func envGetPath(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	path, err := env.Path()
	if e := c.engine(err); e != nil {
		return noString, e
	}
	return String(path), nil
}

// readerCheck clears stale reader slots and returns how many it found.
func readerCheck(c *call) (Value, *Error) {
	env, _, e := c.env(0)
	if e != nil {
		return Value{}, e
	}
	dead, err := env.ReaderCheck()
	if e := c.engine(err); e != nil {
		return noNumber, e
	}
	return Int(int64(dead)), nil
}
