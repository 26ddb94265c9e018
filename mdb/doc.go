// Package mdb binds a transactional, memory-mapped key-value engine to a
// dynamically-typed script host.
//
// # Overview
//
// Scripts never see engine objects. Every environment, transaction,
// database handle and cursor lives in a per-kind namespace and is referred
// to by a string token such as "env0", "txn3" or "cursor1". Tokens come from
// a monotonic counter and are never reused, so a stale token always reports
// "unknown handle".
//
// # Basic Usage
//
//	b, err := mdb.New(libmdbx.New(), mdb.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err) // engine version gate
//	}
//	defer b.Close()
//
//	env, _ := b.Call("env_create")
//	b.Call("env_open", env, mdb.String("/tmp/db"), mdb.Int(0), mdb.Int(0o644))
//	txn, _ := b.Call("txn_begin", env, mdb.String(""), mdb.Int(0))
//
// # Errors
//
// Call reports three kinds of failure:
//   - [KindUser]: bad argument or unknown handle. The status is [APIError],
//     the result is the operation's empty value, and no handle changes.
//   - [KindEngine]: the engine refused. The status is the engine's code.
//   - [KindFatal]: a handle table invariant is broken. The binding logs
//     through zap's Fatal level, which ends the process.
//
// After every call [Binding.Errno] and [Binding.Message] describe the
// outcome, including Success after a clean call.
//
// # Values
//
// Arguments are [Value]s: numbers, byte strings or arrays. Numeric
// arguments must be integral, and flags, sizes and counts must also be
// non-negative. Byte strings are binary-safe. cursor_get and version write
// their output into array arguments.
package mdb
