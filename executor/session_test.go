package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/language/python"
	"github.com/caffeineduck/mdbsh/mdb"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

func newPythonSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	exec, err := New(hostfunc.NewRegistry(), WithEngine(mdbtest.New()))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	t.Cleanup(func() { exec.Close() })

	session, err := exec.NewSession(python.New(), opts...)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestSessionBasic(t *testing.T) {
	session := newPythonSession(t)

	result := session.Run(context.Background(), `print("hello")`)
	if result.Error != nil {
		t.Fatalf("run failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "hello") {
		t.Errorf("expected output to contain 'hello', got: %q", result.Output)
	}
}

func TestSessionStatePersists(t *testing.T) {
	session := newPythonSession(t)

	if result := session.Run(context.Background(), `x = 42`); result.Error != nil {
		t.Fatalf("first run failed: %v", result.Error)
	}
	result := session.Run(context.Background(), `print(x)`)
	if result.Error != nil {
		t.Fatalf("second run failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "42") {
		t.Errorf("expected output to contain '42', got: %q", result.Output)
	}
}

func TestSessionHandlesPersist(t *testing.T) {
	session := newPythonSession(t)
	ctx := context.Background()

	steps := []string{
		`env = mdb.env_create(); mdb.env_open(env, "/session", 0, 0o644)`,
		`txn = mdb.txn_begin(env, "", 0); dbi = mdb.dbi_open(txn, "", 0)`,
		`mdb.put(txn, dbi, "k", "v", 0); print(mdb.txn_commit(txn))`,
	}
	for i, code := range steps {
		if result := session.Run(ctx, code); result.Error != nil {
			t.Fatalf("step %d failed: %v", i, result.Error)
		}
	}

	if got := session.Binding().Handles("txn"); len(got) != 0 {
		t.Errorf("expected committed txn to be released, got %v", got)
	}
	if got := session.Binding().Handles("dbi"); len(got) != 1 {
		t.Errorf("expected dbi to outlive its txn, got %v", got)
	}

	result := session.Run(ctx, `
txn = mdb.txn_begin(env, "", mdb.MDB["RDONLY"])
print(mdb.get(txn, dbi, "k"))
`)
	if result.Error != nil {
		t.Fatalf("read failed: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "v" {
		t.Errorf("expected 'v', got %q", result.Output)
	}

	session.Close()
	for _, kind := range mdb.HandleKinds() {
		if got := session.Binding().Handles(kind); len(got) != 0 {
			t.Errorf("expected %s handles released on close, got %v", kind, got)
		}
	}
}

func TestSessionError(t *testing.T) {
	session := newPythonSession(t)

	result := session.Run(context.Background(), `raise ValueError("test error")`)
	if result.Error == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(result.Error.Error(), "test error") {
		t.Errorf("expected error to contain 'test error', got: %v", result.Error)
	}

	result = session.Run(context.Background(), `print("still alive")`)
	if result.Error != nil || !strings.Contains(result.Output, "still alive") {
		t.Errorf("session should survive an error, got %q %v", result.Output, result.Error)
	}
}

func TestSessionClosedError(t *testing.T) {
	session := newPythonSession(t)
	session.Close()

	if result := session.Run(context.Background(), `print("hello")`); result.Error != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got: %v", result.Error)
	}
}

func TestSessionTimeout(t *testing.T) {
	session := newPythonSession(t, WithSessionTimeout(1*time.Second))

	result := session.Run(context.Background(), `
while True:
    pass
`)
	if result.Error == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(result.Error.Error(), "timeout") {
		t.Errorf("expected timeout error, got: %v", result.Error)
	}
}

func TestMultipleSessionsAreIsolated(t *testing.T) {
	exec, err := New(hostfunc.NewRegistry(), WithEngine(mdbtest.New()))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer exec.Close()

	s1, err := exec.NewSession(python.New())
	if err != nil {
		t.Fatalf("failed to create session 1: %v", err)
	}
	defer s1.Close()

	s2, err := exec.NewSession(python.New())
	if err != nil {
		t.Fatalf("failed to create session 2: %v", err)
	}
	defer s2.Close()

	s1.Run(context.Background(), `env = mdb.env_create()`)
	result := s2.Run(context.Background(), `print(mdb.handles()["env"])`)
	if result.Error != nil {
		t.Fatalf("run failed: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "[]" {
		t.Errorf("expected no envs in session 2, got %q", result.Output)
	}
	if got := s2.Binding().Handles("env"); len(got) != 0 {
		t.Errorf("session 2 should not see session 1's env, got %v", got)
	}
	if got := s1.Binding().Handles("env"); len(got) != 1 {
		t.Errorf("session 1 should keep its env, got %v", got)
	}
}
