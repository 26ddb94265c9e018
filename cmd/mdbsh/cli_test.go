package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/mdb"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

func TestMain(m *testing.M) {
	newEngine = func(*zap.Logger) (mdb.Engine, func()) {
		return mdbtest.New(), func() {}
	}
	os.Exit(m.Run())
}

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"mdbsh", "WebAssembly", "run", "repl", "serve", "version", "--log-level"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("help output should contain %q", phrase)
		}
	}
}

func TestCLISubcommandHelp(t *testing.T) {
	tests := []struct {
		cmd     string
		phrases []string
	}{
		{"run", []string{"--code", "--timeout", "--memory", "--lint", "--mount", "--no-cache"}},
		{"repl", []string{"--history", "--mount", ".handles", ".errno", "Command history"}},
		{"serve", []string{"--port", "--timeout", "--session-ttl", "/execute", "/sessions", "/health"}},
		{"version", []string{"runtime", "major version"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			output, err := executeCommand(rootCmd, tt.cmd, "--help")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, phrase := range tt.phrases {
				if !strings.Contains(output, phrase) {
					t.Errorf("%s help output should contain %q", tt.cmd, phrase)
				}
			}
		})
	}
}

func TestCLIVersion(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, phrase := range []string{"built against: 0.13.6", "runtime:       0.13.6", "compatible"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("version output should contain %q, got %q", phrase, output)
		}
	}
}

func TestCLIVersionMismatch(t *testing.T) {
	saved := newEngine
	defer func() { newEngine = saved }()
	newEngine = func(*zap.Logger) (mdb.Engine, func()) {
		e := mdbtest.New(mdbtest.WithVersions(mdb.Version{Major: 0, Minor: 13, Patch: 6}, mdb.Version{Major: 0, Minor: 12}))
		return e, func() {}
	}

	output, err := executeCommand(rootCmd, "version")
	if err == nil {
		t.Fatal("expected an error for an older runtime")
	}
	if !strings.Contains(output, "incompatible") {
		t.Errorf("expected incompatible status, got %q", output)
	}
}

func TestCLIRunScript(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "--no-cache", "-c", `print(mdb.env_create(), mdb.errno)`)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, output)
	}
	if strings.TrimSpace(output) != "env0 0" {
		t.Errorf("expected 'env0 0', got %q", output)
	}
}

func TestCLIBadLogLevel(t *testing.T) {
	if _, err := buildLogger("loud"); err == nil {
		t.Error("expected error for unknown log level")
	}
	if _, err := buildLogger("debug"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCLILanguage(t *testing.T) {
	for _, tc := range []struct{ flag, file string }{{"", ""}, {"py", ""}, {"", "script.PY"}, {"python", "x.txt"}} {
		lang, err := getLanguage(tc.flag, tc.file)
		if err != nil {
			t.Errorf("getLanguage(%q, %q) error: %v", tc.flag, tc.file, err)
			continue
		}
		if lang.Name() != "python" {
			t.Errorf("getLanguage(%q, %q) = %q, want python", tc.flag, tc.file, lang.Name())
		}
	}
	if _, err := getLanguage("js", ""); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestParseMemoryLimit(t *testing.T) {
	tests := map[string]uint32{
		"none":  0,
		"16MB":  executor.MemoryLimit16MB,
		"256mb": executor.MemoryLimit256MB,
		"1gb":   executor.MemoryLimit1GB,
	}
	for in, want := range tests {
		got, err := parseMemoryLimit(in)
		if err != nil || got != want {
			t.Errorf("parseMemoryLimit(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseMemoryLimit("3mb"); err == nil {
		t.Error("expected error for unknown size")
	}
}

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts([]string{"/data:./db:rw", "/ro:./ro"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mounts) != 2 || mounts[0].Mode != hostfunc.MountReadWrite || mounts[1].Mode != hostfunc.MountReadOnly {
		t.Errorf("unexpected mounts %+v", mounts)
	}
	if _, err := parseMounts([]string{"nope"}); err == nil {
		t.Error("expected error for bad mount")
	}
}

func TestDotCommands(t *testing.T) {
	b, err := mdb.New(mdbtest.New())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if _, err := b.Call("env_create"); err != nil {
		t.Fatal(err)
	}
	b.Call("txn_commit", mdb.String("txn4"))

	var buf bytes.Buffer
	if dotCommand(&buf, b, "print(1)") {
		t.Error("plain code should not be handled")
	}

	if !dotCommand(&buf, b, ".handles") {
		t.Fatal(".handles not handled")
	}
	if !strings.Contains(buf.String(), "env     env0") {
		t.Errorf("expected env0 listed, got %q", buf.String())
	}

	buf.Reset()
	dotCommand(&buf, b, ".errno")
	if !strings.HasPrefix(buf.String(), "-30800 ") {
		t.Errorf("expected API error status, got %q", buf.String())
	}

	buf.Reset()
	dotCommand(&buf, b, ".ops")
	if !strings.Contains(buf.String(), "cursor_get") {
		t.Errorf("expected op list, got %q", buf.String())
	}

	buf.Reset()
	dotCommand(&buf, b, ".bogus")
	if !strings.Contains(buf.String(), "unknown command") {
		t.Errorf("expected unknown command message, got %q", buf.String())
	}
}
