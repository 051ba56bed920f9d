//go:build sdl2

package window

// typedef float Float32;
// typedef unsigned char Uint8;
// void OnAudioPlayback(void *userdata, Uint8 *stream, int len);
import "C"
import (
	"fmt"
	"image"
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/util"
	"github.com/veandco/go-sdl2/sdl"
)

var sdlKeymap = map[sdl.Keycode]input.Control{
	sdl.K_w:    input.LeftUp,
	sdl.K_s:    input.LeftDown,
	sdl.K_UP:   input.RightUp,
	sdl.K_DOWN: input.RightDown,
}

type SDLWindow struct {
	window        *sdl.Window
	renderer      *sdl.Renderer
	texture       *sdl.Texture
	width, height int
	audioDevice   sdl.AudioDeviceID
	audioUserData unsafe.Pointer
	audioBuffer   [][]C.Float32 // NOTE: Access to this variable must be mutually excluded by sdl.LockAudioDevice(audioDevice).
}

// OpenSDL initializes SDL and creates a window of width x height pixels
// scaled by scale. Everything acquired is released again on failure.
func OpenSDL(width, height, scale int) (_ *SDLWindow, err error) {
	if scale <= 0 {
		scale = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL could not initialize: %w", err)
	}
	wind := &SDLWindow{width: width, height: height}
	defer func() {
		if err != nil {
			wind.release()
		}
	}()

	wind.window, err = sdl.CreateWindow(
		constant.WINDOW_TITLE,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width*scale),
		int32(height*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("Window could not be created: %w", err)
	}

	wind.renderer, err = sdl.CreateRenderer(wind.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("Renderer could not be created: %w", err)
	}

	wind.texture, err = wind.renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width),
		int32(height),
	)
	if err != nil {
		return nil, fmt.Errorf("Texture could not be created: %w", err)
	}

	wind.audioUserData = pointer.Save(wind)
	audioDevice, audioErr := sdl.OpenAudioDevice(
		"",
		false,
		&sdl.AudioSpec{
			Freq:     constant.AUDIO_FREQ,
			Format:   sdl.AUDIO_F32,
			Channels: constant.CHANNELS,
			Samples:  constant.AUDIO_SAMPLES,
			Callback: sdl.AudioCallback(C.OnAudioPlayback),
			UserData: wind.audioUserData,
		},
		nil,
		0,
	)
	if audioErr != nil {
		// Sound is optional; keep the window without it.
		util.Trace("SDL audio unavailable: %v", audioErr)
	} else {
		sdl.PauseAudioDevice(audioDevice, false)
		wind.audioDevice = audioDevice
	}

	return wind, nil
}

func SDLOpener(scale int) Opener {
	return func(width, height int) (Window, error) {
		wind, err := OpenSDL(width, height, scale)
		if err != nil {
			return nil, err
		}
		return wind, nil
	}
}

func (wind *SDLWindow) HandleEvents() (bool, *WindowEvent) {
	we := &WindowEvent{}
	escape := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event := event.(type) {
		case *sdl.QuitEvent:
			escape = true

		case *sdl.KeyboardEvent:
			if event.Repeat != 0 {
				continue
			}
			down := event.Type == sdl.KEYDOWN
			switch event.Keysym.Sym {
			case sdl.K_ESCAPE:
				if down {
					escape = true
				}
			case sdl.K_F12:
				if down {
					we.Screenshot = true
				}
			default:
				if c, ok := sdlKeymap[event.Keysym.Sym]; ok {
					we.Inputs = append(we.Inputs, input.Event{Control: c, Down: down})
				}
			}
		}
	}

	return escape, we
}

func (wind *SDLWindow) Present(frame *image.RGBA) error {
	if frame.Rect.Dx() != wind.width || frame.Rect.Dy() != wind.height {
		return fmt.Errorf("Invalid frame size: expected %dx%d, got %v", wind.width, wind.height, frame.Rect)
	}

	// Update the texture
	pixels, pitch, err := wind.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("texture lock: %v: %w", err, ErrResourceExhausted)
	}
	for row := 0; row < wind.height; row++ {
		src := frame.Pix[row*frame.Stride : row*frame.Stride+wind.width*4]
		dst := pixels[row*pitch : row*pitch+wind.width*4]
		for col := 0; col < wind.width; col++ {
			dst[col*4+0] = src[col*4+2] // b
			dst[col*4+1] = src[col*4+1] // g
			dst[col*4+2] = src[col*4+0] // r
			dst[col*4+3] = 0xff         // a
		}
	}
	wind.texture.Unlock()

	// Present the scene
	if err := wind.renderer.Clear(); err != nil {
		return err
	}
	if err := wind.renderer.Copy(wind.texture, nil, nil); err != nil {
		return err
	}
	wind.renderer.Present()

	return nil
}

func (wind *SDLWindow) EnqueueAudioBuffer(buf []float32) error {
	if wind.audioDevice == 0 {
		return nil
	}

	// Lock the device to avoid data race with OnAudioPlayback.
	sdl.LockAudioDevice(wind.audioDevice)
	defer sdl.UnlockAudioDevice(wind.audioDevice)

	length := constant.AUDIO_SAMPLES * constant.CHANNELS
	if len(buf) != length {
		return fmt.Errorf("Invalid length of audio buffer")
	}

	if len(wind.audioBuffer) >= constant.AUDIO_QUEUE_SIZE {
		wind.popAudioBuffer() // Discard the old one
	}

	bufC := make([]C.Float32, length)
	for i, v := range buf {
		bufC[i] = C.Float32(v)
	}
	wind.audioBuffer = append(wind.audioBuffer, bufC)

	return nil
}

// popAudioBuffer assumes that access to wind.audioBuffer is locked beforehand.
func (wind *SDLWindow) popAudioBuffer() []C.Float32 {
	if len(wind.audioBuffer) == 0 {
		return nil
	}

	ret := wind.audioBuffer[0]
	wind.audioBuffer = wind.audioBuffer[1:]
	return ret
}

//export OnAudioPlayback
func OnAudioPlayback(userdata unsafe.Pointer, stream *C.Uint8, length C.int) {
	n := int(length) / 4
	buf := unsafe.Slice((*C.Float32)(unsafe.Pointer(stream)), n)
	wind := pointer.Restore(userdata).(*SDLWindow)
	src := wind.popAudioBuffer()

	if src == nil {
		for i := range buf {
			buf[i] = 0
		}
	} else {
		copy(buf, src)
	}
}

func (wind *SDLWindow) Ticks() int64 {
	return int64(sdl.GetTicks()) * 1000
}

func (wind *SDLWindow) Delay(us int64) {
	if us >= 1000 {
		sdl.Delay(uint32(us / 1000))
	}
}

func (wind *SDLWindow) Destroy() error {
	if wind.window == nil {
		return fmt.Errorf("Window already destroyed")
	}
	wind.release()
	return nil
}

func (wind *SDLWindow) release() {
	if wind.audioDevice != 0 {
		sdl.CloseAudioDevice(wind.audioDevice)
		wind.audioDevice = 0
	}
	if wind.audioUserData != nil {
		pointer.Unref(wind.audioUserData)
		wind.audioUserData = nil
	}
	if wind.texture != nil {
		wind.texture.Destroy()
		wind.texture = nil
	}
	if wind.renderer != nil {
		wind.renderer.Destroy()
		wind.renderer = nil
	}
	if wind.window != nil {
		wind.window.Destroy()
		wind.window = nil
	}
	sdl.Quit()
}
