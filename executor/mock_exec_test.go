package executor

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

func newMockExecutor(t *testing.T, opts ...ExecutorOption) *Executor {
	t.Helper()
	exec, err := New(hostfunc.NewRegistry(), opts...)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	t.Cleanup(func() { exec.Close() })
	return exec
}

// responses decodes the host call responses the mock printed, one per line.
func responses(t *testing.T, output string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var resp map[string]any
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		out = append(out, resp)
	}
	return out
}

func TestMockRunOutput(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	result := exec.Run(context.Background(), lang, "print hello\nwarn oops")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if result.Output != "hello\noops" {
		t.Errorf("expected stdout then stderr, got %q", result.Output)
	}
}

func TestMockRunExitCode(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	if result := exec.Run(context.Background(), lang, "exit 0"); result.Error != nil {
		t.Errorf("exit 0 should not be an error: %v", result.Error)
	}
	result := exec.Run(context.Background(), lang, "fail broken")
	if result.Error == nil {
		t.Fatal("expected error for failing script")
	}
	if !strings.Contains(result.Output, "broken") {
		t.Errorf("expected error text in output, got %q", result.Output)
	}
}

func TestMockHostCalls(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	result := exec.Run(context.Background(), lang,
		`call {"fn":"time_now","args":{}}`+"\n"+
			`call {"fn":"nope","args":{}}`+"\n"+
			`call garbage`)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	resp := responses(t, result.Output)
	if len(resp) != 3 {
		t.Fatalf("expected 3 responses, got %v", resp)
	}
	if now, ok := resp[0]["data"].(float64); !ok || now <= 0 {
		t.Errorf("expected timestamp, got %v", resp[0])
	}
	if resp[1]["error"] != "unknown function: nope" {
		t.Errorf("unexpected error %v", resp[1])
	}
	if resp[2]["error"] != "invalid call format" {
		t.Errorf("unexpected error %v", resp[2])
	}
}

func TestMockMDBWithoutEngine(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	result := exec.Run(context.Background(), lang, `call {"fn":"mdb_env_create","args":{"argv":[]}}`)
	resp := responses(t, result.Output)
	if len(resp) != 1 || resp[0]["error"] != "unknown function: mdb_env_create" {
		t.Errorf("expected mdb functions to be absent, got %v", resp)
	}
}

func TestMockRunReleasesHandles(t *testing.T) {
	lang := newMockLanguage(t)
	engine := mdbtest.New()
	exec := newMockExecutor(t, WithEngine(engine))

	script := `call {"fn":"mdb_env_create","args":{"argv":[]}}` + "\n" +
		`call {"fn":"mdb_env_open","args":{"argv":["env0","/db",0,420]}}`
	for i := 0; i < 2; i++ {
		result := exec.Run(context.Background(), lang, script)
		if result.Error != nil {
			t.Fatalf("run %d: %v", i, result.Error)
		}
		resp := responses(t, result.Output)
		if len(resp) != 2 {
			t.Fatalf("run %d: expected 2 responses, got %v", i, resp)
		}
		data := resp[0]["data"].(map[string]any)
		if data["result"] != "env0" {
			t.Errorf("run %d: each run should start with fresh tokens, got %v", i, data["result"])
		}
		if errno := resp[1]["data"].(map[string]any)["errno"]; errno != nil && errno != float64(0) {
			t.Errorf("run %d: env_open failed: %v", i, resp[1])
		}
	}
	if n := engine.Envs(); n != 2 {
		t.Errorf("expected one environment per run, got %d", n)
	}
}

func TestMockSessionKeepsHandles(t *testing.T) {
	lang := newMockLanguage(t)
	engine := mdbtest.New()
	exec := newMockExecutor(t, WithEngine(engine))

	session, err := exec.NewSession(lang)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	result := session.Run(context.Background(), `call {"fn":"mdb_env_create","args":{"argv":[]}}`)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if got := session.Binding().Handles("env"); len(got) != 1 {
		t.Fatalf("expected one live env between runs, got %v", got)
	}

	result = session.Run(context.Background(), `call {"fn":"mdb_handles","args":{}}`)
	resp := responses(t, result.Output)
	if len(resp) != 1 {
		t.Fatalf("expected one response, got %q", result.Output)
	}
	envs := resp[0]["data"].(map[string]any)["env"].([]any)
	if len(envs) != 1 || envs[0] != "env0" {
		t.Errorf("expected env0 to survive, got %v", envs)
	}

	if err := session.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if got := session.Binding().Handles("env"); len(got) != 0 {
		t.Errorf("expected handles released on close, got %v", got)
	}
}

func TestMockSessionErrorAndClose(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	session, err := exec.NewSession(lang, WithSessionTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	result := session.Run(context.Background(), "print before\nfail bad input")
	if result.Error == nil || result.Error.Error() != "bad input" {
		t.Errorf("expected guest error, got %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "before" {
		t.Errorf("expected partial output, got %q", result.Output)
	}

	result = session.Run(context.Background(), "print again")
	if result.Error != nil || strings.TrimSpace(result.Output) != "again" {
		t.Errorf("session should survive an error, got %q %v", result.Output, result.Error)
	}

	session.Close()
	if result := session.Run(context.Background(), "print x"); result.Error != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got %v", result.Error)
	}
}

func TestMockSessionNoticesExit(t *testing.T) {
	lang := newMockLanguage(t)
	exec := newMockExecutor(t)

	session, err := exec.NewSession(lang)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	defer session.Close()

	result := session.Run(context.Background(), "exit 3")
	if result.Error == nil {
		t.Fatal("expected an error when the guest exits")
	}
	if result := session.Run(context.Background(), "print x"); result.Error == nil {
		t.Error("expected runs after exit to fail")
	}
}
