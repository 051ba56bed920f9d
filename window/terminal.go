package window

import (
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/input"
)

// Terminals only report key presses, so a control stays down for hold after
// its last press (auto-repeat keeps refreshing it while the key is held).
type TerminalWindow struct {
	screen        tcell.Screen
	width, height int
	events        chan tcell.Event
	done          chan struct{}
	hold          time.Duration
	lastPress     [constant.NUM_CONTROLS]time.Time
	down          input.Snapshot
	cells         *image.RGBA
	start         time.Time
	now           func() time.Time
}

var newScreen = tcell.NewScreen

// OpenTerminal opens the terminal backend. Controls stay down for hold after
// their last press; 0 keeps the default.
func OpenTerminal(width, height int, hold time.Duration) (*TerminalWindow, error) {
	screen, err := newScreen()
	if err != nil {
		return nil, err
	}
	wind, err := NewTerminalWindow(screen, width, height)
	if err != nil {
		return nil, err
	}
	if hold > 0 {
		wind.SetKeyHold(hold)
	}
	return wind, nil
}

func TerminalOpener(hold time.Duration) Opener {
	return func(width, height int) (Window, error) {
		wind, err := OpenTerminal(width, height, hold)
		if err != nil {
			return nil, err
		}
		return wind, nil
	}
}

// NewTerminalWindow takes ownership of screen and initializes it.
func NewTerminalWindow(screen tcell.Screen, width, height int) (*TerminalWindow, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal could not initialize: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	wind := &TerminalWindow{
		screen: screen,
		width:  width,
		height: height,
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
		hold:   constant.TERMINAL_KEY_HOLD_MS * time.Millisecond,
		now:    time.Now,
	}
	wind.start = wind.now()
	go wind.pump()
	return wind, nil
}

func (wind *TerminalWindow) pump() {
	for {
		ev := wind.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case wind.events <- ev:
		case <-wind.done:
			return
		}
	}
}

func (wind *TerminalWindow) SetKeyHold(hold time.Duration) {
	wind.hold = hold
}

func terminalControl(ev *tcell.EventKey) (input.Control, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.RightUp, true
	case tcell.KeyDown:
		return input.RightDown, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return input.LeftUp, true
		case 's', 'S':
			return input.LeftDown, true
		}
	}
	return 0, false
}

func (wind *TerminalWindow) HandleEvents() (bool, *WindowEvent) {
	we := &WindowEvent{}
	escape := false
	now := wind.now()

	for drained := false; !drained; {
		select {
		case ev := <-wind.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					escape = true
				case tcell.KeyF12:
					we.Screenshot = true
				default:
					if c, ok := terminalControl(ev); ok {
						wind.lastPress[c] = now
						if !wind.down.IsActive(c) {
							wind.down = wind.down.With(c, true)
							we.Inputs = append(we.Inputs, input.Event{Control: c, Down: true})
						}
					}
				}
			case *tcell.EventResize:
				wind.screen.Sync()
			}
		default:
			drained = true
		}
	}

	for _, c := range input.Controls() {
		if wind.down.IsActive(c) && now.Sub(wind.lastPress[c]) > wind.hold {
			wind.down = wind.down.With(c, false)
			we.Inputs = append(we.Inputs, input.Event{Control: c, Down: false})
		}
	}

	return escape, we
}

// Present scales the frame to the terminal and draws two pixel rows per cell
// using the upper half block.
func (wind *TerminalWindow) Present(frame *image.RGBA) error {
	cols, rows := wind.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if wind.cells == nil || wind.cells.Rect.Dx() != cols || wind.cells.Rect.Dy() != rows*2 {
		wind.cells = image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	}
	draw.NearestNeighbor.Scale(wind.cells, wind.cells.Rect, frame, frame.Rect, draw.Src, nil)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := wind.cells.RGBAAt(x, y*2)
			bottom := wind.cells.RGBAAt(x, y*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			wind.screen.SetContent(x, y, '▀', nil, style)
		}
	}
	wind.screen.Show()
	return nil
}

func (wind *TerminalWindow) EnqueueAudioBuffer(buf []float32) error {
	return nil
}

func (wind *TerminalWindow) Beep() error {
	return wind.screen.Beep()
}

func (wind *TerminalWindow) Ticks() int64 {
	return wind.now().Sub(wind.start).Microseconds()
}

func (wind *TerminalWindow) Delay(us int64) {
	if us > 0 {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

func (wind *TerminalWindow) Destroy() error {
	select {
	case <-wind.done:
		return fmt.Errorf("Window already destroyed")
	default:
	}
	close(wind.done)
	wind.screen.Fini()
	return nil
}
