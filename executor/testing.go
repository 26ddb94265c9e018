package executor

import (
	"sync"

	"github.com/caffeineduck/mdbsh/hostfunc"
	"github.com/caffeineduck/mdbsh/mdb"
)

// Shared executor for tests that would otherwise pay the interpreter
// compile on every case.
var (
	testExecutor     *Executor
	testExecutorOnce sync.Once
	testExecutorErr  error
)

// GetTestExecutor returns an executor shared across a test binary. The
// engine passed on the first call is the one every later caller gets;
// use an in-memory engine such as mdbtest so runs leave no files behind.
func GetTestExecutor(engine mdb.Engine) (*Executor, error) {
	testExecutorOnce.Do(func() {
		testExecutor, testExecutorErr = New(hostfunc.NewRegistry(), WithEngine(engine))
	})
	return testExecutor, testExecutorErr
}

// CloseTestExecutor closes the shared test executor.
func CloseTestExecutor() {
	if testExecutor != nil {
		testExecutor.Close()
		testExecutor = nil
		testExecutorOnce = sync.Once{}
	}
}
