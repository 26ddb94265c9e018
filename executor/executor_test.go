package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/language/python"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

// Shared executor to avoid the interpreter cold start per test.
// Python tests are integration tests - they verify the full stack works.
var (
	sharedExec *executor.Executor
	sharedLang = python.New()
)

func TestMain(m *testing.M) {
	var err error
	sharedExec, err = executor.GetTestExecutor(mdbtest.New())
	if err != nil {
		panic("failed to create shared executor: " + err.Error())
	}

	// Warm up - compile Python module once
	sharedExec.Run(context.Background(), sharedLang, "x=1")

	code := m.Run()

	executor.CloseTestExecutor()
	os.Exit(code)
}

func run(t *testing.T, code string, opts ...executor.Option) string {
	t.Helper()
	result := sharedExec.Run(context.Background(), sharedLang, code, opts...)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", result.Error, result.Output)
	}
	return strings.TrimSpace(result.Output)
}

// =============================================================================
// INTEGRATION TESTS (use shared Python executor)
// =============================================================================

func TestPythonBasicExecution(t *testing.T) {
	if out := run(t, `print("hello")`); out != "hello" {
		t.Errorf("expected 'hello', got %q", out)
	}
}

func TestPythonCustomHostFunction(t *testing.T) {
	// This test needs its own executor because it registers a custom function
	registry := hostfunc.NewRegistry()
	registry.Register("custom_fn", func(ctx context.Context, args map[string]any) (any, error) {
		name := args["name"].(string)
		return "Hello, " + name + "!", nil
	})

	exec, err := executor.New(registry)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer exec.Close()

	result := exec.Run(context.Background(), sharedLang, `
result = _mdbsh_call("custom_fn", {"name": "World"})
print(result)
`)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "Hello, World!" {
		t.Errorf("expected 'Hello, World!', got %q", result.Output)
	}
}

// =============================================================================
// MDB TESTS
// =============================================================================

func TestPythonPutGet(t *testing.T) {
	out := run(t, `
import mdb
env = mdb.env_create()
mdb.env_open(env, "/put-get", 0, 0o644)
txn = mdb.txn_begin(env, "", 0)
dbi = mdb.dbi_open(txn, "", 0)
mdb.put(txn, dbi, "greeting", "hello", 0)
mdb.put(txn, dbi, b"bin", b"\xff\x00", 0)
print(mdb.txn_commit(txn), mdb.errno)
txn = mdb.txn_begin(env, "", mdb.MDB["RDONLY"])
print(mdb.get(txn, dbi, "greeting"))
print(mdb.get(txn, dbi, "bin") == b"\xff\x00")
print(mdb.get(txn, dbi, "missing") == "", mdb.errno == mdb.MDB["NOTFOUND"])
mdb.txn_abort(txn)
mdb.env_close(env)
`)
	want := "0 0\nhello\nTrue\nTrue True"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestPythonCursorGetFillsDict(t *testing.T) {
	out := run(t, `
import mdb
env = mdb.env_create()
mdb.env_open(env, "/cursor", 0, 0o644)
txn = mdb.txn_begin(env, "", 0)
dbi = mdb.dbi_open(txn, "", 0)
for k in ("b", "a", "c"):
    mdb.put(txn, dbi, k, k.upper(), 0)
cur = mdb.cursor_open(txn, dbi)
kv = {}
keys = []
op = mdb.MDB["FIRST"]
while mdb.cursor_get(cur, kv, op) == 0:
    keys.append(kv[0] + kv[1])
    op = mdb.MDB["NEXT"]
print(",".join(keys))
v = {}
mdb.version(v)
print(sorted(v.keys()))
`)
	want := "aA,bB,cC\n['major', 'minor', 'patch']"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestPythonUserErrorIsInBand(t *testing.T) {
	out := run(t, `
import mdb
print(mdb.txn_commit("txn99"), mdb.errno)
print("known txn" in mdb.errmsg)
try:
    mdb.errno = 1
except AttributeError:
    print("read-only")
`)
	want := "-30800 -30800\nTrue\nread-only"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestPythonMountsConfineEnvPaths(t *testing.T) {
	dir := t.TempDir()
	out := run(t, `
import mdb
env = mdb.env_create()
print(mdb.env_open(env, "/data/app.db", 0, 0o644))
print(mdb.env_get_path(env))
try:
    mdb.env_open(mdb.env_create(), "/etc/app.db", 0, 0o644)
except RuntimeError as e:
    print("denied")
`, executor.WithMount("/data", dir, executor.MountReadWriteCreate))
	want := "0\n/data/app.db\ndenied"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRunsDoNotShareHandles(t *testing.T) {
	first := run(t, `
import mdb
print(mdb.env_create())
`)
	second := run(t, `
import mdb
print(mdb.handles()["env"])
`)
	if first != "env0" {
		t.Errorf("expected env0, got %q", first)
	}
	if second != "[]" {
		t.Errorf("expected no live handles in a new run, got %q", second)
	}
}

// =============================================================================
// EXECUTOR BEHAVIOR TESTS
// =============================================================================

func TestExecutorTimeout(t *testing.T) {
	result := sharedExec.Run(context.Background(), sharedLang, `
while True:
    pass
`, executor.WithTimeout(1*time.Second))

	if result.Error == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(result.Error.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", result.Error)
	}
}

func TestExecutorDurationTracked(t *testing.T) {
	result := sharedExec.Run(context.Background(), sharedLang, `print(1)`)
	if result.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func TestExecutorDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	exec, err := executor.New(hostfunc.NewRegistry(), executor.WithDiskCache(dir))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer exec.Close()

	if result := exec.Run(context.Background(), sharedLang, `print(1)`); result.Error != nil {
		t.Fatalf("run failed: %v", result.Error)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Errorf("expected compiled artifacts in %s, got %v %v", dir, entries, err)
	}
}

func TestExecutorClosed(t *testing.T) {
	exec, err := executor.New(hostfunc.NewRegistry())
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if err := exec.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := exec.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if result := exec.Run(context.Background(), sharedLang, `print(1)`); result.Error != executor.ErrClosed {
		t.Errorf("expected ErrClosed, got %v", result.Error)
	}
}

func TestExecutorMemoryLimit(t *testing.T) {
	exec, err := executor.New(hostfunc.NewRegistry(), executor.WithMemoryLimit(16))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer exec.Close()

	// The interpreter needs more than 1MB just to start.
	result := exec.Run(context.Background(), sharedLang, `print("hi")`, executor.WithTimeout(5*time.Second))
	if result.Error == nil {
		t.Log("Note: Python managed to run with a 1MB limit (unexpected but OK)")
	} else {
		t.Logf("Memory limit enforced: %v", result.Error)
	}
}

func TestConcurrentRuns(t *testing.T) {
	const numGoroutines = 20
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errs := make(chan string, numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()
			result := sharedExec.Run(context.Background(), sharedLang, `
import mdb
env = mdb.env_create()
print(env)
`)
			if result.Error != nil {
				errs <- result.Error.Error()
				return
			}
			if strings.TrimSpace(result.Output) != "env0" {
				errs <- "unexpected output " + result.Output
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
