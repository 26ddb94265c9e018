// Package python provides the Python language adapter for mdbsh.
//
// python.wasm is a RustPython build for WASI; fetch it with
//
//	PYTHON_WASM_URL=<release asset> go generate ./language/python
package python

//go:generate go run ../../internal/tools/download -url ${PYTHON_WASM_URL} -o python.wasm -min-size 1000000

import (
	_ "embed"
)

//go:embed python.wasm
var wasmModule []byte

//go:embed stdlib.py
var stdlib string

// Python implements the executor.Language interface for Python execution.
type Python struct{}

// New returns a Python language adapter.
func New() *Python {
	return &Python{}
}

// Name returns "python".
func (p *Python) Name() string {
	return "python"
}

// Module returns the RustPython WASM binary.
func (p *Python) Module() []byte {
	return wasmModule
}

// WrapCode prepends the stdlib, which installs the mdb module, to user code.
func (p *Python) WrapCode(code string) string {
	return stdlib + "\n" + code
}

// Args returns the command-line arguments for the Python interpreter.
func (p *Python) Args(wrappedCode string) []string {
	return []string{"python", "-c", wrappedCode}
}

// SessionInit sets the flag that makes the stdlib enter its command loop
// instead of returning.
func (p *Python) SessionInit() string {
	return "_MDBSH_SESSION_MODE = True\n"
}
