// Package engine is the graphics context a game loop drives once per frame:
//
//	Clear -> Draw* -> PollInput -> (update) -> Delay -> Present -> PollQuit
package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/framebuf"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/util"
	"github.com/ushitora-anqou/aqpong/window"
)

type State int

const (
	Uninitialized State = iota
	Active
	Closing
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Closing:
		return "closing"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Palette struct {
	Background, Paddle, Ball, Text color.RGBA
}

func DefaultPalette() Palette {
	return Palette{
		Background: framebuf.RGB(constant.COLOR_BACKGROUND),
		Paddle:     framebuf.RGB(constant.COLOR_PADDLE),
		Ball:       framebuf.RGB(constant.COLOR_BALL),
		Text:       framebuf.RGB(constant.COLOR_TEXT),
	}
}

// Context owns a window, its back buffer and the last presented frame. It
// must only be used from one goroutine.
type Context struct {
	wind    window.Window
	back    *framebuf.Buffer
	front   *image.RGBA
	palette Palette
	state   State

	inFrame    bool
	frameSeq   uint64
	polledSeq  uint64
	reducer    *input.Reducer
	snapshot   input.Snapshot
	quit       bool
	screenshot bool

	presented, dropped uint64
}

// Init opens a window through open and returns an Active context.
func Init(width, height int, open window.Opener) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrInitFailure, width, height)
	}
	if open == nil {
		return nil, fmt.Errorf("%w: no window backend", ErrInitFailure)
	}
	back, err := framebuf.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitFailure, err)
	}
	wind, err := open(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitFailure, err)
	}

	ctx := &Context{
		wind:      wind,
		back:      back,
		front:     image.NewRGBA(image.Rect(0, 0, width, height)),
		palette:   DefaultPalette(),
		state:     Active,
		reducer:   input.NewReducer(),
		polledSeq: ^uint64(0),
	}
	util.Trace("engine: context %dx%d active", width, height)
	return ctx, nil
}

func (ctx *Context) State() State {
	return ctx.state
}

func (ctx *Context) Width() int {
	return ctx.back.Width()
}

func (ctx *Context) Height() int {
	return ctx.back.Height()
}

func (ctx *Context) Palette() Palette {
	return ctx.palette
}

func (ctx *Context) violation(err error) error {
	if Debug {
		panic(err)
	}
	return err
}

// usable checks that the context accepts frame and input operations.
func (ctx *Context) usable(op string) error {
	switch ctx.state {
	case Active:
		return nil
	case Destroyed:
		return fmt.Errorf("%s: %w", op, ErrDestroyed)
	}
	return ctx.violation(fmt.Errorf("%s in %v state: %w", op, ctx.state, ErrInvalidState))
}

func (ctx *Context) drawable(op string) error {
	if err := ctx.usable(op); err != nil {
		return err
	}
	if !ctx.inFrame {
		return ctx.violation(fmt.Errorf("%s outside Clear..Present: %w", op, ErrInvalidFrameState))
	}
	return nil
}

// Clear fills the back buffer with the background color and opens a frame.
func (ctx *Context) Clear() error {
	if err := ctx.usable("Clear"); err != nil {
		return err
	}
	ctx.back.Clear(ctx.palette.Background)
	if !ctx.inFrame {
		ctx.inFrame = true
		ctx.frameSeq++
	}
	return nil
}

// DrawRect fills a rectangle with the paddle color. Negative extents are
// normalized.
func (ctx *Context) DrawRect(x, y, w, h int) error {
	return ctx.Draw(framebuf.Rect(x, y, w, h, ctx.palette.Paddle))
}

func (ctx *Context) DrawCircle(x, y, r int) error {
	return ctx.Draw(framebuf.Circle(x, y, r, ctx.palette.Ball))
}

func (ctx *Context) Draw(cmd framebuf.Command) error {
	if err := ctx.drawable("Draw " + cmd.Kind.String()); err != nil {
		return err
	}
	if err := ctx.back.Apply(cmd); err != nil {
		if errors.Is(err, framebuf.ErrInvalidRadius) {
			return fmt.Errorf("Draw %v: %w: %w", cmd.Kind, ErrInvalidArgument, err)
		}
		return err
	}
	return nil
}

func (ctx *Context) DrawText(x, y int, s string) error {
	if err := ctx.drawable("DrawText"); err != nil {
		return err
	}
	ctx.back.DrawText(x, y, s, ctx.palette.Text)
	return nil
}

// Present shows the back buffer and closes the frame. A backend running out
// of resources drops the frame and returns ErrResourceExhausted.
func (ctx *Context) Present() error {
	if err := ctx.drawable("Present"); err != nil {
		return err
	}
	ctx.inFrame = false
	if err := ctx.wind.Present(ctx.back.Image()); err != nil {
		if errors.Is(err, window.ErrResourceExhausted) {
			ctx.dropped++
			util.Trace("engine: frame %d dropped: %v", ctx.frameSeq, err)
		}
		return fmt.Errorf("Present: %w", err)
	}
	if err := ctx.back.CopyTo(ctx.front); err != nil {
		return err
	}
	ctx.presented++
	return nil
}

// pump drains the backend's pending events into the reducer.
func (ctx *Context) pump() {
	quit, we := ctx.wind.HandleEvents()
	if quit {
		ctx.quit = true
	}
	if we == nil {
		return
	}
	for _, ev := range we.Inputs {
		ctx.reducer.Apply(ev)
	}
	if we.Screenshot {
		ctx.screenshot = true
	}
}

// PollInput returns the input snapshot of the current frame. Events are only
// consumed on the first call of a frame; later calls return the same value.
func (ctx *Context) PollInput() (input.Snapshot, error) {
	if err := ctx.usable("PollInput"); err != nil {
		return 0, err
	}
	if ctx.polledSeq != ctx.frameSeq {
		ctx.pump()
		ctx.snapshot = ctx.reducer.State()
		ctx.polledSeq = ctx.frameSeq
	}
	return ctx.snapshot, nil
}

// Delay blocks the calling goroutine for at least ms milliseconds.
func (ctx *Context) Delay(ms int) error {
	if ctx.state == Destroyed {
		return fmt.Errorf("Delay: %w", ErrDestroyed)
	}
	if ms > 0 {
		ctx.wind.Delay(int64(ms) * 1000)
	}
	return nil
}

// PollQuit reports whether a quit was requested. Once it returns true it
// keeps returning true and the context is Closing.
func (ctx *Context) PollQuit() bool {
	switch ctx.state {
	case Destroyed, Closing:
		return true
	}
	ctx.pump()
	if ctx.quit {
		ctx.state = Closing
		ctx.inFrame = false
		util.Trace("engine: quit requested after %d frames", ctx.presented)
		return true
	}
	return false
}

// RequestQuit behaves as if the user closed the window.
func (ctx *Context) RequestQuit() {
	ctx.quit = true
}

// ScreenshotRequested reports and clears a pending screenshot request.
func (ctx *Context) ScreenshotRequested() bool {
	ret := ctx.screenshot
	ctx.screenshot = false
	return ret
}

// Frame returns a copy of the last presented frame.
func (ctx *Context) Frame() *image.RGBA {
	dst := image.NewRGBA(ctx.front.Rect)
	copy(dst.Pix, ctx.front.Pix)
	return dst
}

// Presented and Dropped count frames shown and frames lost to the backend.
func (ctx *Context) Presented() uint64 {
	return ctx.presented
}

func (ctx *Context) Dropped() uint64 {
	return ctx.dropped
}

func (ctx *Context) Clock() window.Clock {
	return ctx.wind
}

func (ctx *Context) EnqueueAudio(buf []float32) error {
	if ctx.state == Destroyed {
		return fmt.Errorf("EnqueueAudio: %w", ErrDestroyed)
	}
	return ctx.wind.EnqueueAudioBuffer(buf)
}

// Beep signals an event on backends without audio. It reports whether the
// backend supports it.
func (ctx *Context) Beep() bool {
	b, ok := ctx.wind.(window.Beeper)
	if !ok || ctx.state == Destroyed {
		return false
	}
	if err := b.Beep(); err != nil {
		util.Trace("engine: beep: %v", err)
	}
	return true
}

// RunMain runs loop, handing the calling goroutine to the backend first if
// it needs it.
func (ctx *Context) RunMain(loop func() error) error {
	if r, ok := ctx.wind.(window.MainLoopRunner); ok {
		return r.RunMain(loop)
	}
	return loop()
}

// Destroy releases the window. It is valid from Active and Closing.
func (ctx *Context) Destroy() error {
	if ctx.state == Destroyed {
		return fmt.Errorf("Destroy: %w", ErrDestroyed)
	}
	ctx.state = Destroyed
	ctx.inFrame = false
	if err := ctx.wind.Destroy(); err != nil {
		return fmt.Errorf("Destroy: %w", err)
	}
	util.Trace("engine: destroyed (%d presented, %d dropped)", ctx.presented, ctx.dropped)
	return nil
}
