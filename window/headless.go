package window

import (
	"fmt"
	"image"
	"time"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/input"
)

// Headless keeps presented frames in memory. Events are injected by the
// caller, and by default the clock is virtual so Delay returns immediately.
type Headless struct {
	width, height int
	front         *image.RGBA
	frames        int
	pending       []input.Event
	quit          bool
	screenshot    bool
	audioBuffer   [][]float32
	clock         int64
	start         time.Time
	realTime      bool
	destroyed     bool

	// FailPresent, when set, is returned by the next Present.
	FailPresent error
}

func NewHeadless(width, height int) *Headless {
	return &Headless{
		width:  width,
		height: height,
		front:  image.NewRGBA(image.Rect(0, 0, width, height)),
		start:  time.Now(),
	}
}

func OpenHeadless(width, height int) (Window, error) {
	return NewHeadless(width, height), nil
}

// SetRealTime makes Ticks follow the wall clock and Delay sleep.
func (h *Headless) SetRealTime(realTime bool) {
	h.realTime = realTime
	h.start = time.Now()
}

func (h *Headless) Inject(ev input.Event) {
	h.pending = append(h.pending, ev)
}

func (h *Headless) InjectQuit() {
	h.quit = true
}

func (h *Headless) InjectScreenshot() {
	h.screenshot = true
}

func (h *Headless) Present(frame *image.RGBA) error {
	if h.destroyed {
		return fmt.Errorf("Present on destroyed window")
	}
	if err := h.FailPresent; err != nil {
		h.FailPresent = nil
		return err
	}
	if frame.Rect != h.front.Rect {
		return fmt.Errorf("Invalid frame bounds: expected %v, got %v", h.front.Rect, frame.Rect)
	}
	copy(h.front.Pix, frame.Pix)
	h.frames++
	return nil
}

func (h *Headless) HandleEvents() (bool, *WindowEvent) {
	we := &WindowEvent{
		Inputs:     h.pending,
		Screenshot: h.screenshot,
	}
	h.pending = nil
	h.screenshot = false
	return h.quit, we
}

func (h *Headless) EnqueueAudioBuffer(buf []float32) error {
	length := constant.AUDIO_SAMPLES * constant.CHANNELS
	if len(buf) != length {
		return fmt.Errorf("Invalid length of audio buffer")
	}
	if len(h.audioBuffer) >= constant.AUDIO_QUEUE_SIZE {
		h.audioBuffer = h.audioBuffer[1:] // Discard the old one
	}
	h.audioBuffer = append(h.audioBuffer, append([]float32(nil), buf...))
	return nil
}

func (h *Headless) Ticks() int64 {
	if h.realTime {
		return time.Since(h.start).Microseconds()
	}
	return h.clock
}

func (h *Headless) Delay(us int64) {
	if us <= 0 {
		return
	}
	if h.realTime {
		time.Sleep(time.Duration(us) * time.Microsecond)
		return
	}
	h.clock += us
}

func (h *Headless) Destroy() error {
	if h.destroyed {
		return fmt.Errorf("Window already destroyed")
	}
	h.destroyed = true
	return nil
}

func (h *Headless) Frames() int {
	return h.frames
}

// Front returns the last presented frame.
func (h *Headless) Front() *image.RGBA {
	return h.front
}

func (h *Headless) AudioBuffers() [][]float32 {
	return h.audioBuffer
}

func (h *Headless) Destroyed() bool {
	return h.destroyed
}
