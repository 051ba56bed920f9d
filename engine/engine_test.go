package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/ushitora-anqou/aqpong/framebuf"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/window"
)

func newHeadlessContext(t *testing.T, w, h int) (*Context, *window.Headless) {
	var headless *window.Headless
	ctx, err := Init(w, h, func(width, height int) (window.Window, error) {
		headless = window.NewHeadless(width, height)
		return headless, nil
	})
	if err != nil {
		t.Fatalf("Init(%d, %d): %v", w, h, err)
	}
	return ctx, headless
}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestInitValidDimensions(t *testing.T) {
	table := [][2]int{{1, 1}, {400, 400}, {640, 480}, {3, 700}}
	for _, entry := range table {
		ctx, _ := newHeadlessContext(t, entry[0], entry[1])
		if ctx.State() != Active {
			t.Fatalf("Init(%d, %d): state %v, expected active", entry[0], entry[1], ctx.State())
		}
		if ctx.Width() != entry[0] || ctx.Height() != entry[1] {
			t.Fatalf("Init(%d, %d): got %dx%d", entry[0], entry[1], ctx.Width(), ctx.Height())
		}
	}
}

func TestInitFailure(t *testing.T) {
	opened := false
	open := func(width, height int) (window.Window, error) {
		opened = true
		return window.NewHeadless(width, height), nil
	}
	table := [][2]int{{0, 400}, {400, 0}, {-5, 10}, {10, -5}}
	for _, entry := range table {
		_, err := Init(entry[0], entry[1], open)
		if !errors.Is(err, ErrInitFailure) {
			t.Fatalf("Init(%d, %d): got %v, expected ErrInitFailure", entry[0], entry[1], err)
		}
	}
	if opened {
		t.Fatalf("backend opened for invalid dimensions")
	}

	backendErr := fmt.Errorf("no display")
	_, err := Init(10, 10, func(int, int) (window.Window, error) { return nil, backendErr })
	if !errors.Is(err, ErrInitFailure) || !errors.Is(err, backendErr) {
		t.Fatalf("Init with failing backend: got %v", err)
	}
	if _, err := Init(10, 10, nil); !errors.Is(err, ErrInitFailure) {
		t.Fatalf("Init with nil opener: got %v", err)
	}
}

func TestClearPresentBlankFrame(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 64, 48)
	if err := ctx.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := ctx.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	bg := ctx.Palette().Background
	if got := countColor(headless.Front(), bg); got != 64*48 {
		t.Fatalf("blank frame: got %d background pixels, expected %d", got, 64*48)
	}
	if got := countColor(ctx.Frame(), bg); got != 64*48 {
		t.Fatalf("Frame: got %d background pixels, expected %d", got, 64*48)
	}
}

func TestPaddleAndBallScenario(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 400, 400)
	steps := []func() error{
		ctx.Clear,
		func() error { return ctx.DrawRect(5, 100, 20, 200) },
		func() error { return ctx.DrawCircle(200, 200, 5) },
		ctx.Present,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	frame := ctx.Frame()
	pal := ctx.Palette()
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			c := frame.RGBAAt(x, y)
			inPaddle := x >= 5 && x < 25 && y >= 100 && y < 300
			dx, dy := x-200, y-200
			inBall := dx*dx+dy*dy <= 25
			switch {
			case inPaddle && c != pal.Paddle:
				t.Fatalf("(%d, %d): expected paddle color, got %v", x, y, c)
			case inBall && c != pal.Ball:
				t.Fatalf("(%d, %d): expected ball color, got %v", x, y, c)
			case !inPaddle && !inBall && c != pal.Background:
				t.Fatalf("(%d, %d): expected background, got %v", x, y, c)
			}
		}
	}
}

func TestNegativeRectIsNormalized(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 50, 50)
	ctx.Clear()
	if err := ctx.DrawRect(30, 40, -20, -10); err != nil {
		t.Fatalf("DrawRect with negative size: %v", err)
	}
	ctx.Present()
	frame := ctx.Frame()
	if got := countColor(frame, ctx.Palette().Paddle); got != 200 {
		t.Fatalf("normalized rect: got %d pixels, expected 200", got)
	}
	if frame.RGBAAt(10, 30) != ctx.Palette().Paddle || frame.RGBAAt(29, 39) != ctx.Palette().Paddle {
		t.Fatalf("normalized rect does not cover [10,30)x[30,40)")
	}
}

func TestNegativeRadius(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 10, 10)
	ctx.Clear()
	if err := ctx.DrawCircle(5, 5, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("DrawCircle(-1): got %v, expected ErrInvalidArgument", err)
	}
	tooLarge := framebuf.MaxRadius
	tooLarge++
	if err := ctx.DrawCircle(5, 5, tooLarge); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("DrawCircle(%d): got %v, expected ErrInvalidArgument", tooLarge, err)
	}
}

func TestHugeCircleFillsFrame(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 10, 10)
	ctx.Clear()
	if err := ctx.DrawCircle(5, 5, 1<<28); err != nil {
		t.Fatalf("DrawCircle(1<<28): %v", err)
	}
	ctx.Present()
	if got := countColor(ctx.Frame(), ctx.Palette().Ball); got != 100 {
		t.Fatalf("huge circle: got %d ball pixels, expected 100", got)
	}
}

func TestDrawOutsideFrame(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)

	calls := map[string]func() error{
		"DrawRect":   func() error { return ctx.DrawRect(0, 0, 2, 2) },
		"DrawCircle": func() error { return ctx.DrawCircle(5, 5, 1) },
		"DrawText":   func() error { return ctx.DrawText(0, 0, "x") },
		"Present":    ctx.Present,
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrInvalidFrameState) {
			t.Fatalf("%s before Clear: got %v, expected ErrInvalidFrameState", name, err)
		}
	}

	ctx.Clear()
	ctx.Present()
	if err := ctx.DrawRect(0, 0, 1, 1); !errors.Is(err, ErrInvalidFrameState) {
		t.Fatalf("DrawRect after Present: got %v, expected ErrInvalidFrameState", err)
	}
	if headless.Frames() != 1 {
		t.Fatalf("backend frames: got %d, expected 1", headless.Frames())
	}
}

func TestDebugPanicsOnViolation(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 10, 10)
	Debug = true
	defer func() {
		Debug = false
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidFrameState) {
			t.Fatalf("expected panic with ErrInvalidFrameState, got %v", r)
		}
	}()
	ctx.DrawRect(0, 0, 1, 1)
}

func TestPollQuitSticky(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)
	for i := 0; i < 3; i++ {
		if ctx.PollQuit() {
			t.Fatalf("PollQuit returned true before any quit event")
		}
	}
	headless.InjectQuit()
	for i := 0; i < 3; i++ {
		if !ctx.PollQuit() {
			t.Fatalf("PollQuit call %d after quit: got false", i)
		}
	}
	if ctx.State() != Closing {
		t.Fatalf("state after quit: got %v, expected closing", ctx.State())
	}
	if err := ctx.Clear(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Clear while closing: got %v, expected ErrInvalidState", err)
	}
	if _, err := ctx.PollInput(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("PollInput while closing: got %v, expected ErrInvalidState", err)
	}
	if err := ctx.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if ctx.State() != Destroyed || !headless.Destroyed() {
		t.Fatalf("Destroy: state %v, backend destroyed %v", ctx.State(), headless.Destroyed())
	}
}

func TestDestroyed(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 10, 10)
	if err := ctx.Destroy(); err != nil {
		t.Fatalf("Destroy from active: %v", err)
	}
	if err := ctx.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("second Destroy: got %v", err)
	}
	if err := ctx.Clear(); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("Clear after Destroy: got %v", err)
	}
	if err := ctx.Delay(1); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("Delay after Destroy: got %v", err)
	}
	if !ctx.PollQuit() {
		t.Fatalf("PollQuit after Destroy: expected true")
	}
}

func TestPollInputOncePerFrame(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)

	ctx.Clear()
	headless.Inject(input.Event{Control: input.LeftUp, Down: true})
	first, err := ctx.PollInput()
	if err != nil {
		t.Fatalf("PollInput: %v", err)
	}
	if !first.IsActive(input.LeftUp) {
		t.Fatalf("PollInput: left_up not active in %v", first)
	}

	// Events arriving mid-frame are not visible until the next frame.
	headless.Inject(input.Event{Control: input.LeftUp, Down: false})
	second, _ := ctx.PollInput()
	if second != first {
		t.Fatalf("second PollInput in frame: got %v, expected %v", second, first)
	}
	ctx.Present()

	ctx.Clear()
	third, _ := ctx.PollInput()
	if third.IsActive(input.LeftUp) {
		t.Fatalf("next frame: left_up still active")
	}

	// No pending events keeps the last state.
	ctx.Present()
	ctx.Clear()
	if fourth, _ := ctx.PollInput(); fourth != third {
		t.Fatalf("no events: got %v, expected %v", fourth, third)
	}
}

func TestPresentResourceExhausted(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)
	headless.FailPresent = fmt.Errorf("texture lock: %w", window.ErrResourceExhausted)

	ctx.Clear()
	if err := ctx.Present(); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("Present: got %v, expected ErrResourceExhausted", err)
	}
	if ctx.Dropped() != 1 || ctx.Presented() != 0 {
		t.Fatalf("counters: dropped %d presented %d", ctx.Dropped(), ctx.Presented())
	}

	// The next frame goes through.
	ctx.Clear()
	if err := ctx.Present(); err != nil {
		t.Fatalf("Present after drop: %v", err)
	}
	if ctx.Presented() != 1 {
		t.Fatalf("presented: got %d, expected 1", ctx.Presented())
	}
}

func TestDelayAdvancesClock(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)
	before := headless.Ticks()
	if err := ctx.Delay(20); err != nil {
		t.Fatalf("Delay: %v", err)
	}
	if got := headless.Ticks() - before; got < 20000 {
		t.Fatalf("Delay(20): clock advanced %dus", got)
	}
	ctx.Delay(-5)
	if got := headless.Ticks() - before; got != 20000 {
		t.Fatalf("Delay(-5) moved the clock: %dus", got)
	}
}

func TestScreenshotRequest(t *testing.T) {
	ctx, headless := newHeadlessContext(t, 10, 10)
	headless.InjectScreenshot()
	ctx.PollQuit()
	if !ctx.ScreenshotRequested() {
		t.Fatalf("ScreenshotRequested: expected true")
	}
	if ctx.ScreenshotRequested() {
		t.Fatalf("ScreenshotRequested: request not cleared")
	}
}

func TestRunMainWithoutRunner(t *testing.T) {
	ctx, _ := newHeadlessContext(t, 10, 10)
	called := false
	if err := ctx.RunMain(func() error { called = true; return nil }); err != nil || !called {
		t.Fatalf("RunMain: err %v called %v", err, called)
	}
}
