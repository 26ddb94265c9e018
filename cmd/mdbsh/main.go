// Command mdbsh runs Python scripts against an embedded key-value engine
// inside a WebAssembly sandbox.
package main

func main() {
	Execute()
}
