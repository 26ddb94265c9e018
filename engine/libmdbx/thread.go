package libmdbx

import (
	"runtime"
	"sync"
)

// thread runs closures one at a time on a single locked OS thread.
type thread struct {
	work chan func()
	quit chan struct{}
	once sync.Once
}

func newThread() *thread {
	t := &thread{
		work: make(chan func()),
		quit: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *thread) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case fn := <-t.work:
			fn()
		case <-t.quit:
			return
		}
	}
}

// do runs fn on the engine thread and waits for it. After stop, fn runs on
// the caller's goroutine.
func (t *thread) do(fn func()) {
	done := make(chan struct{})
	select {
	case t.work <- func() {
		defer close(done)
		fn()
	}:
		<-done
	case <-t.quit:
		fn()
	}
}

func (t *thread) stop() {
	t.once.Do(func() { close(t.quit) })
}
