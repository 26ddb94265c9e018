// Package hostfunc provides the host functions sandboxed scripts call.
//
// Host functions are Go functions reachable from inside the WASM guest
// through the executor's call protocol. Each takes a JSON object and
// returns a JSON-encodable result.
//
// # Registry
//
// The [Registry] holds the functions available to one run or session:
//
//	registry := hostfunc.NewRegistry()
//	registry.Register("my_func", func(ctx context.Context, args map[string]any) (any, error) {
//	    return "result", nil
//	})
//
// # MDB
//
// [MDB] exposes an [mdb.Binding] as one function per operation:
//
//	b, _ := mdb.New(libmdbx.New())
//	hostfunc.NewMDB(b, hostfunc.WithMounts(
//	    hostfunc.Mount{VirtualPath: "/data", HostPath: "./db", Mode: hostfunc.MountReadWriteCreate},
//	)).Register(registry)
//
// The guest calls mdb_put with {"argv": [txn, dbi, key, data, flags]} and
// receives {"result": 0, "errno": 0}. Strings travel as JSON strings;
// binary data that is not valid UTF-8 travels as {"b64": "..."} in both
// directions. Array arguments (the cursor_get key/data pair, the version
// out array) come back under "out", keyed by argument position.
//
// mdb_errno, mdb_constants and mdb_handles report the error channel, the
// symbolic name table and the live tokens.
//
// # Security Model
//
// With mounts configured, env_open and env_copy only accept paths inside a
// mount, and the mount mode decides whether an environment may be opened
// for writing or created.
package hostfunc
