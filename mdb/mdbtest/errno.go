package mdbtest

import (
	"errors"
	"fmt"
	"syscall"
)

// Status codes, numerically identical to libmdbx so tests read the same
// against either engine.
const (
	KeyExist     = -30799
	NotFound     = -30798
	DBsFull      = -30791
	Incompatible = -30784
	BadTxn       = -30782
	BadValSize   = -30781
	BadDBI       = -30780
	Busy         = -30778

	EINVAL = int(syscall.EINVAL)
	EACCES = int(syscall.EACCES)
	ENOENT = int(syscall.ENOENT)
	EEXIST = int(syscall.EEXIST)
)

var messages = map[int]string{
	KeyExist:     "MDBX_KEYEXIST: Key/data pair already exists",
	NotFound:     "MDBX_NOTFOUND: No matching key/data pair found",
	Incompatible: "MDBX_INCOMPATIBLE: Incompatible operation",
	BadTxn:       "MDBX_BAD_TXN: Transaction is not valid for requested operation",
	BadValSize:   "MDBX_BAD_VALSIZE: Invalid size or alignment of key or data",
	BadDBI:       "MDBX_BAD_DBI: The specified DBI-handle is invalid",
	Busy:         "MDBX_BUSY: Another write transaction is running",
	DBsFull:      "MDBX_DBS_FULL: Too many DBI-handles",
}

// Errno is a status code returned by the in-memory engine.
type Errno int

func (e Errno) Error() string {
	return strError(int(e))
}

func strError(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	if code > 0 {
		return syscall.Errno(code).Error()
	}
	return fmt.Sprintf("unknown error %d", code)
}

func code(err error) int {
	if err == nil {
		return 0
	}
	var e Errno
	if errors.As(err, &e) {
		return int(e)
	}
	return EINVAL
}
