package python

import (
	"strings"
	"testing"

	"github.com/caffeineduck/mdbsh/mdb"
	"github.com/caffeineduck/mdbsh/mdb/mdbtest"
)

func TestModuleEmbedded(t *testing.T) {
	lang := New()
	wasm := lang.Module()
	if len(wasm) == 0 {
		t.Fatal("WASM bytes not embedded")
	}
	if len(wasm) < 1000000 {
		t.Errorf("WASM too small: %d bytes", len(wasm))
	}
}

func TestStdlibContents(t *testing.T) {
	if len(stdlib) == 0 {
		t.Fatal("stdlib not embedded")
	}
	checks := []string{
		"_mdbsh_call",
		"\\x00MDBSH:",
		"MDBSH_READY",
		"_MDBModule",
		"cursor_get",
		"_session_loop",
	}
	for _, check := range checks {
		if !strings.Contains(stdlib, check) {
			t.Errorf("stdlib missing %q", check)
		}
	}
}

func TestSessionInit(t *testing.T) {
	lang := New()
	init := lang.SessionInit()
	if !strings.Contains(init, "_MDBSH_SESSION_MODE") {
		t.Error("SessionInit missing session mode flag")
	}
}

func TestWrapCode(t *testing.T) {
	lang := New()
	code := `print("hello")`
	wrapped := lang.WrapCode(code)
	if !strings.Contains(wrapped, code) {
		t.Error("WrapCode should include original code")
	}
}

func TestStdlibDeclaresEveryOperation(t *testing.T) {
	b, err := mdb.New(mdbtest.New())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	for _, op := range b.Ops() {
		if !strings.Contains(stdlib, `"`+op+`"`) {
			t.Errorf("stdlib missing operation %q", op)
		}
	}
}

func TestArgs(t *testing.T) {
	lang := New()
	args := lang.Args("test code")
	if len(args) == 0 {
		t.Error("Args should return non-empty slice")
	}
	if args[0] != "python" {
		t.Errorf("first arg should be 'python', got %q", args[0])
	}
}
