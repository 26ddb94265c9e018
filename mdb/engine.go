package mdb

import (
	"fmt"
	"os"
)

// DBI identifies a named database within an environment.
type DBI uint32

// Version is an engine library version.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compatible reports whether a runtime library at v can serve code built
// against built: same major version, minor at least as new.
func (v Version) Compatible(built Version) bool {
	return v.Major == built.Major && v.Minor >= built.Minor
}

// Constant is one symbolic name from the engine header.
type Constant struct {
	Name  string
	Value int64
}

// Engine is the storage library the binding exposes.
type Engine interface {
	// NewEnv allocates an unopened environment.
	NewEnv() (Env, error)

	// BuildVersion is the library version the engine adapter was compiled against.
	BuildVersion() Version

	// RuntimeVersion is the version of the library actually linked.
	RuntimeVersion() Version

	// Code extracts the engine status from an error returned by any engine
	// call. nil maps to Success.
	Code(err error) int

	// StrError describes an engine status code.
	StrError(code int) string

	// Constants lists flag, cursor op and error code names.
	Constants() []Constant
}

type Env interface {
	Open(path string, flags uint, mode os.FileMode) error
	Close()
	Sync(force bool) error
	Copy(path string, flags uint) error
	Flags() (uint, error)
	SetFlags(flags uint, on bool) error
	SetMapSize(size uint64) error
	SetMaxDBs(n uint64) error
	SetMaxReaders(n uint64) error
	MaxKeySize() int
	MaxReaders() (uint64, error)
	Path() (string, error)
	ReaderCheck() (int, error)

	// BeginTxn starts a transaction. parent is nil for a top-level one.
	BeginTxn(parent Txn, flags uint) (Txn, error)
	CloseDBI(dbi DBI)
}

type Txn interface {
	ID() uint64
	Commit() error
	Abort()
	Reset()
	Renew() error

	// OpenDBI opens a named database; the empty name is the main database.
	OpenDBI(name string, flags uint) (DBI, error)
	Flags(dbi DBI) (uint, error)
	Drop(dbi DBI, del bool) error
	Put(dbi DBI, key, data []byte, flags uint) error
	Get(dbi DBI, key []byte) ([]byte, error)
	Del(dbi DBI, key, data []byte) error
	OpenCursor(dbi DBI) (Cursor, error)
	Cmp(dbi DBI, a, b []byte) int
	DCmp(dbi DBI, a, b []byte) int
}

type Cursor interface {
	Close()
	Renew(txn Txn) error
	Put(key, data []byte, flags uint) error
	Del(flags uint) error
	Count() (uint64, error)
	Get(key, data []byte, op uint) ([]byte, []byte, error)
}
