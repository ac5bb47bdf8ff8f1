package log

import "testing"

func TestRecoverPanicRunsCleanup(t *testing.T) {
	Setup(false)
	if !ready() {
		t.Fatal("Setup did not initialize the handler")
	}

	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic("boom")
	}()
	if !cleaned {
		t.Error("cleanup not run after panic")
	}
}

func TestRecoverPanicWithoutPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
	}()
	if cleaned {
		t.Error("cleanup run without a panic")
	}
}
