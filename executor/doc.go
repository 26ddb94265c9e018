// Package executor runs sandboxed Python code against a key-value engine.
//
// # Overview
//
// The executor manages WASM module compilation, caching, and execution.
// It supports both stateless execution (single Run call) and stateful
// sessions (multiple Run calls with persistent state). Every run or
// session gets its own [mdb.Binding], so handle tokens never leak
// between them.
//
// # Basic Usage
//
//	exec, err := executor.New(hostfunc.NewRegistry(),
//	    executor.WithEngine(libmdbx.New()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	result := exec.Run(ctx, python.New(), `print(mdb.version({}))`)
//	fmt.Println(result.Output)
//
// Without WithEngine the mdb_* host functions are not registered and any
// mdb call from the script fails with "unknown function".
//
// # Sessions
//
// Sessions keep interpreter state and open handles across executions:
//
//	session, err := exec.NewSession(python.New(),
//	    executor.WithSessionMount("/data", "./db", hostfunc.MountReadWriteCreate),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	session.Run(ctx, `env = mdb.env_create()`)
//	session.Run(ctx, `print(mdb.env_open(env, "/data/app.db", 0, 0o644))`)  // 0
//
// # Mounts
//
// Environment paths are resolved through the mounts of the run. With no
// mounts configured, paths go to the engine unchanged; with mounts, a
// path outside every mount is rejected.
//
// # Language Interface
//
// To add support for a new language, implement the [Language] interface.
// See [github.com/caffeineduck/mdbsh/language/python] for an example.
package executor
