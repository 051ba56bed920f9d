//go:build ebiten

package window

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/util"
)

var ebitenKeymap = map[ebiten.Key]input.Control{
	ebiten.KeyW:         input.LeftUp,
	ebiten.KeyS:         input.LeftDown,
	ebiten.KeyArrowUp:   input.RightUp,
	ebiten.KeyArrowDown: input.RightDown,
}

// EbitenWindow is written by the ebiten game on the main thread and read by
// the frame loop on another goroutine; every field below mtx is guarded by it.
type EbitenWindow struct {
	width, height int
	start         time.Time
	audioPlayer   *audio.Player

	mtx            sync.Mutex
	frame          []uint8
	keys, reported input.Snapshot
	quit           bool
	screenshot     bool
	stopped        bool
	done           bool

	mtxAudioBuffer sync.Mutex
	audioBuffer    [][]uint8
}

func EbitenOpener(scale int) Opener {
	return func(width, height int) (Window, error) {
		wind, err := OpenEbiten(width, height, scale)
		if err != nil {
			return nil, err
		}
		return wind, nil
	}
}

func OpenEbiten(width, height, scale int) (*EbitenWindow, error) {
	if constant.CHANNELS != 2 {
		return nil, fmt.Errorf("Invalid channel: ebiten supports only 2 channels.")
	}
	if scale <= 0 {
		scale = 1
	}

	ebiten.SetTPS(constant.TARGET_FPS)
	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle(constant.WINDOW_TITLE)
	ebiten.SetWindowClosingHandled(true)

	wind := &EbitenWindow{
		width:  width,
		height: height,
		start:  time.Now(),
		frame:  make([]uint8, 4*width*height),
	}

	audioContext := audio.CurrentContext()
	if audioContext == nil {
		audioContext = audio.NewContext(constant.AUDIO_FREQ)
	}
	player, err := audioContext.NewPlayer(&ebitenAudioReader{wind})
	if err != nil {
		util.Trace("ebiten audio unavailable: %v", err)
	} else {
		player.Play()
		wind.audioPlayer = player
	}
	return wind, nil
}

type ebitenGame struct {
	wind *EbitenWindow
}

func (g *ebitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.wind.width, g.wind.height
}

func (g *ebitenGame) Update() error {
	wind := g.wind
	var keys input.Snapshot
	for key, c := range ebitenKeymap {
		keys = keys.With(c, ebiten.IsKeyPressed(key))
	}

	wind.mtx.Lock()
	defer wind.mtx.Unlock()
	if wind.done || wind.stopped {
		return ebiten.Termination
	}
	wind.keys = keys
	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		wind.quit = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		wind.screenshot = true
	}
	return nil
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	g.wind.mtx.Lock()
	screen.WritePixels(g.wind.frame)
	g.wind.mtx.Unlock()
}

// RunMain runs ebiten on the calling goroutine and loop on a new one. The
// game terminates on the next tick after loop returns, and a failing game
// requests quit and waits for loop.
func (wind *EbitenWindow) RunMain(loop func() error) error {
	return runOnMain(
		func() error {
			err := ebiten.RunGame(&ebitenGame{wind})
			if errors.Is(err, ebiten.Termination) {
				return nil
			}
			return err
		},
		loop,
		func() {
			wind.mtx.Lock()
			wind.stopped = true
			wind.mtx.Unlock()
		},
		func() {
			wind.mtx.Lock()
			wind.quit = true
			wind.mtx.Unlock()
		},
	)
}

func (wind *EbitenWindow) HandleEvents() (bool, *WindowEvent) {
	wind.mtx.Lock()
	defer wind.mtx.Unlock()

	we := &WindowEvent{Screenshot: wind.screenshot}
	for _, c := range input.Controls() {
		if now := wind.keys.IsActive(c); now != wind.reported.IsActive(c) {
			we.Inputs = append(we.Inputs, input.Event{Control: c, Down: now})
		}
	}
	wind.reported = wind.keys
	wind.screenshot = false
	return wind.quit, we
}

func (wind *EbitenWindow) Present(frame *image.RGBA) error {
	if frame.Rect.Dx() != wind.width || frame.Rect.Dy() != wind.height {
		return fmt.Errorf("Invalid frame size: expected %dx%d, got %v", wind.width, wind.height, frame.Rect)
	}
	wind.mtx.Lock()
	defer wind.mtx.Unlock()
	for row := 0; row < wind.height; row++ {
		copy(wind.frame[row*wind.width*4:(row+1)*wind.width*4], frame.Pix[row*frame.Stride:])
	}
	return nil
}

func (wind *EbitenWindow) EnqueueAudioBuffer(buf []float32) error {
	length := constant.AUDIO_SAMPLES * constant.CHANNELS
	if len(buf) != length {
		return fmt.Errorf("Invalid length of audio buffer")
	}

	bufU := make([]uint8, length*2 /* 16 bits */)
	for i := 0; i < length; i++ {
		// signed, 16-bit, and little endian
		val := int16(buf[i] * 0x7fff)
		bufU[i*2] = uint8(val & 0x00ff)
		bufU[i*2+1] = uint8((val >> 8) & 0x00ff)
	}

	wind.mtxAudioBuffer.Lock()
	defer wind.mtxAudioBuffer.Unlock()

	if len(wind.audioBuffer) >= constant.AUDIO_QUEUE_SIZE {
		wind.audioBuffer = wind.audioBuffer[1:] // Discard the old one
	}
	wind.audioBuffer = append(wind.audioBuffer, bufU)

	return nil
}

func (wind *EbitenWindow) Ticks() int64 {
	return time.Since(wind.start).Microseconds()
}

func (wind *EbitenWindow) Delay(us int64) {
	if us > 0 {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

func (wind *EbitenWindow) Destroy() error {
	wind.mtx.Lock()
	defer wind.mtx.Unlock()
	if wind.done {
		return fmt.Errorf("Window already destroyed")
	}
	wind.done = true
	if wind.audioPlayer != nil {
		wind.audioPlayer.Close()
	}
	return nil
}

type ebitenAudioReader struct {
	wind *EbitenWindow
}

func (r *ebitenAudioReader) Read(buf []uint8) (int, error) {
	wind := r.wind
	wind.mtxAudioBuffer.Lock()
	defer wind.mtxAudioBuffer.Unlock()

	if len(wind.audioBuffer) == 0 {
		// Return silence
		length := constant.AUDIO_SAMPLES * constant.CHANNELS * 2 // 16 bits
		if len(buf) < length {
			length = len(buf)
		}
		for i := 0; i < length; i++ {
			buf[i] = 0
		}
		return length, nil
	}

	src := wind.audioBuffer[0]
	length := copy(buf, src)
	if length == len(src) {
		wind.audioBuffer = wind.audioBuffer[1:]
	} else {
		wind.audioBuffer[0] = src[length:]
	}

	return length, nil
}
