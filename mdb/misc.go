package mdb

func strerror(c *call) (Value, *Error) {
	code, e := c.int(0, "an integer error number")
	if e != nil {
		return Value{}, e
	}
	if code == APIError {
		return String(apiErrorMessage), nil
	}
	return String(c.b.engine.StrError(int(code))), nil
}

// version returns the runtime engine version. An optional array argument
// is cleared and filled with major, minor and patch; anything else is a
// user error, but the version string is still returned.
func version(c *call) (Value, *Error) {
	v := c.b.engine.RuntimeVersion()
	if c.present(0) {
		out, e := c.array(0, "an array")
		if e != nil {
			e.keep = true
			return String(v.String()), e
		}
		out.Clear()
		out.Set("major", Int(int64(v.Major)))
		out.Set("minor", Int(int64(v.Minor)))
		out.Set("patch", Int(int64(v.Patch)))
	}
	return String(v.String()), nil
}
