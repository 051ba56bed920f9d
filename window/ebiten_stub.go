//go:build !ebiten

package window

import "fmt"

func EbitenOpener(scale int) Opener {
	return func(width, height int) (Window, error) {
		return nil, fmt.Errorf("ebiten backend not available - compile with -tags ebiten")
	}
}
