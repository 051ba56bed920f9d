package window

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunOnMainReturnsLoopError(t *testing.T) {
	loopErr := errors.New("loop failed")
	done := make(chan struct{})
	err := runOnMain(
		func() error {
			<-done
			return nil
		},
		func() error { return loopErr },
		func() { close(done) },
		func() { t.Errorf("stop called although main succeeded") },
	)
	if !errors.Is(err, loopErr) {
		t.Fatalf("got %v, expected the loop error", err)
	}
}

func TestRunOnMainWaitsForLoopWhenMainFails(t *testing.T) {
	mainErr := errors.New("graphics driver lost")
	quit := make(chan struct{})
	var loopDone atomic.Bool
	err := runOnMain(
		func() error { return mainErr },
		func() error {
			<-quit
			loopDone.Store(true)
			return nil
		},
		func() {},
		func() { close(quit) },
	)
	if !errors.Is(err, mainErr) {
		t.Fatalf("got %v, expected the main error", err)
	}
	if !loopDone.Load() {
		t.Fatalf("returned before the loop finished")
	}
}
