package window

import (
	"errors"
	"image"

	"github.com/ushitora-anqou/aqpong/input"
)

// ErrResourceExhausted is wrapped by backends when they cannot get the
// resources needed to show a frame. The frame is lost but the window stays usable.
var ErrResourceExhausted = errors.New("resource exhausted")

// WindowEvent carries what a backend observed since the previous HandleEvents.
type WindowEvent struct {
	Inputs     []input.Event
	Screenshot bool
}

type Clock interface {
	Ticks() int64 // microseconds
	Delay(us int64)
}

type Window interface {
	Clock
	Present(frame *image.RGBA) error
	HandleEvents() (bool, *WindowEvent)
	EnqueueAudioBuffer(buf []float32) error
	Destroy() error
}

// Opener creates a window whose drawable area is width x height pixels.
type Opener func(width, height int) (Window, error)

// MainLoopRunner is implemented by backends that must own the calling
// goroutine. RunMain runs loop on another goroutine and returns its error.
type MainLoopRunner interface {
	RunMain(loop func() error) error
}

// Beeper is implemented by backends that cannot play audio buffers but can
// still signal an event.
type Beeper interface {
	Beep() error
}
