package mdb

type opFunc func(c *call) (Value, *Error)

// opSpec describes one host-visible operation. empty is returned in place
// of the result whenever the call fails with a user error.
type opSpec struct {
	min, max int
	empty    Value
	fn       opFunc
}

var (
	noString = String("")
	noNumber = Int(0)
	apiError = Int(APIError)
)

func newOpTable() map[string]opSpec {
	return map[string]opSpec{
		"env_create":         {0, 0, noString, envCreate},
		"env_open":           {4, 4, apiError, envOpen},
		"env_close":          {1, 1, apiError, envClose},
		"env_sync":           {2, 2, apiError, envSync},
		"env_copy":           {2, 2, apiError, envCopy},
		"env_copy2":          {3, 3, apiError, envCopy2},
		"env_get_flags":      {1, 1, noNumber, envGetFlags},
		"env_set_flags":      {3, 3, apiError, envSetFlags},
		"env_set_mapsize":    {2, 2, apiError, envSetMapSize},
		"env_set_maxdbs":     {2, 2, apiError, envSetMaxDBs},
		"env_set_maxreaders": {2, 2, apiError, envSetMaxReaders},
		"env_get_maxkeysize": {1, 1, noNumber, envGetMaxKeySize},
		"env_get_maxreaders": {1, 1, noNumber, envGetMaxReaders},
		"env_get_path":       {1, 1, noString, envGetPath},
		"reader_check":       {1, 1, noNumber, readerCheck},

		"txn_begin":  {3, 3, noString, txnBegin},
		"txn_id":     {1, 1, noNumber, txnID},
		"txn_commit": {1, 1, apiError, txnCommit},
		"txn_abort":  {1, 1, apiError, txnAbort},
		"txn_reset":  {1, 1, apiError, txnReset},
		"txn_renew":  {1, 1, apiError, txnRenew},

		"dbi_open":  {3, 3, noString, dbiOpen},
		"dbi_close": {2, 2, apiError, dbiClose},
		"dbi_flags": {2, 2, noNumber, dbiFlags},
		"drop":      {3, 3, apiError, drop},

		"put":  {5, 5, apiError, put},
		"get":  {3, 3, noString, get},
		"del":  {3, 4, apiError, del},
		"cmp":  {4, 4, noNumber, cmp},
		"dcmp": {4, 4, noNumber, dcmp},

		"cursor_open":  {2, 2, noString, cursorOpen},
		"cursor_close": {1, 1, apiError, cursorClose},
		"cursor_renew": {2, 2, apiError, cursorRenew},
		"cursor_put":   {4, 4, apiError, cursorPut},
		"cursor_del":   {2, 2, apiError, cursorDel},
		"cursor_count": {1, 1, noNumber, cursorCount},
		"cursor_get":   {3, 3, apiError, cursorGet},

		"strerror": {1, 1, noString, strerror},
		"version":  {0, 1, noString, version},
	}
}

// status turns an engine error into the numeric result of a status-only
// operation.
func (c *call) status(err error) (Value, *Error) {
	if e := c.engine(err); e != nil {
		return Int(int64(e.Code)), e
	}
	return Int(Success), nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

const (
	flagsArg = "an unsigned integer flags value"
	pathArg  = "a path string"
)
