package executor

//go:generate env GOOS=wasip1 GOARCH=wasm go build -o testdata/mock.wasm ./testdata/mock.go

import (
	"os"
	"testing"
)

// mockLanguage implements Language for testing executor logic
// without the overhead of a real interpreter.
type mockLanguage struct {
	wasm []byte
}

func (m *mockLanguage) Name() string {
	return "mock"
}

func (m *mockLanguage) Module() []byte {
	return m.wasm
}

func (m *mockLanguage) WrapCode(code string) string {
	return code
}

func (m *mockLanguage) Args(wrappedCode string) []string {
	return []string{"mock", wrappedCode}
}

func (m *mockLanguage) SessionInit() string {
	return ""
}

// newMockLanguage loads testdata/mock.wasm, skipping the test when it has
// not been generated.
func newMockLanguage(t testing.TB) *mockLanguage {
	t.Helper()
	wasm, err := os.ReadFile("testdata/mock.wasm")
	if err != nil {
		t.Skip("testdata/mock.wasm not built; run go generate ./executor")
	}
	return &mockLanguage{wasm: wasm}
}
