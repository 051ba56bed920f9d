//go:build !sdl2

package window

import "fmt"

func SDLOpener(scale int) Opener {
	return func(width, height int) (Window, error) {
		return nil, fmt.Errorf("SDL2 backend not available - compile with -tags sdl2 and install SDL2 development libraries")
	}
}
