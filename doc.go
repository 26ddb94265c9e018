// Package mdbsh exposes an embedded key-value engine (libmdbx) to sandboxed
// Python scripts.
//
// # Overview
//
// Scripts run in a WASM interpreter with no ambient capabilities. The only
// way out is the mdb module, whose functions mirror the engine's C API:
// environments, transactions, databases and cursors are handed to the
// script as opaque string tokens, binary data crosses the boundary
// unchanged, and every call reports its status through mdb.errno.
//
// # Basic Usage
//
//	exec, _ := executor.New(hostfunc.NewRegistry(),
//	    executor.WithEngine(libmdbx.New()))
//	defer exec.Close()
//
//	result := exec.Run(ctx, python.New(), `
//	import mdb
//	env = mdb.env_create()
//	mdb.env_open(env, "/data/app.db", mdb.MDB["NOSUBDIR"], 0o644)
//	txn = mdb.txn_begin(env, "", 0)
//	dbi = mdb.dbi_open(txn, "", 0)
//	mdb.put(txn, dbi, "greeting", "hello", 0)
//	mdb.txn_commit(txn)
//	`, executor.WithMount("/data", "./db", executor.MountReadWriteCreate))
//
//	// Session with persistent state and handles
//	session, _ := exec.NewSession(python.New())
//	session.Run(ctx, `env = mdb.env_create()`)
//	session.Run(ctx, `print(mdb.handles()["env"])`)  // ['env0']
//
// Each Run and each Session owns its handles. Whatever a script leaves
// open is closed when the run ends or the session is closed.
//
// See the [mdb], [executor], [hostfunc], [engine/libmdbx] and
// [language/python] packages for detailed API documentation.
package mdbsh
