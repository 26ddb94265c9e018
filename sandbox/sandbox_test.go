package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

// Integration tests - full Python execution
// Unit tests for individual components are in their respective packages

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Engine = mdbtest.New()
	return cfg
}

func TestRunPutGet(t *testing.T) {
	result := Run(context.Background(), `
env = mdb.env_create()
mdb.env_open(env, "/sandbox", 0, 0o644)
txn = mdb.txn_begin(env, "", 0)
dbi = mdb.dbi_open(txn, "", 0)
mdb.put(txn, dbi, "key", "value", 0)
print(mdb.get(txn, dbi, "key"))
`, testConfig())
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "value" {
		t.Errorf("expected 'value', got %q", result.Output)
	}
}

func TestRunTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 500 * time.Millisecond
	result := Run(context.Background(), "while True: pass", cfg)
	if result.Error == nil || !strings.Contains(result.Error.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", result.Error)
	}
}

func TestRunMounts(t *testing.T) {
	cfg := testConfig()
	cfg.Mounts = []hostfunc.Mount{{VirtualPath: "/db", HostPath: t.TempDir(), Mode: hostfunc.MountReadOnly}}
	result := Run(context.Background(), `
try:
    mdb.env_open(mdb.env_create(), "/db/new", 0, 0o644)
except RuntimeError as e:
    print("denied:", e)
`, cfg)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !strings.Contains(result.Output, "denied:") || !strings.Contains(result.Output, "read-only mount") {
		t.Errorf("expected read-only denial, got %q", result.Output)
	}
}
