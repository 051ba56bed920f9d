// Package framebuf implements the software back buffer that every frame is
// stamped into before it is handed to a window backend.
package framebuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

type Kind int

const (
	KindRect Kind = iota
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is a single primitive. It is never retained past Apply.
type Command struct {
	Kind       Kind
	X, Y, W, H int
	R          int
	Color      color.RGBA
}

func Rect(x, y, w, h int, c color.RGBA) Command {
	return Command{Kind: KindRect, X: x, Y: y, W: w, H: h, Color: c}
}

func Circle(x, y, r int, c color.RGBA) Command {
	return Command{Kind: KindCircle, X: x, Y: y, R: r, Color: c}
}

// RGB converts 0xRRGGBB into an opaque color.
func RGB(hex uint32) color.RGBA {
	return color.RGBA{
		R: uint8(hex >> 16),
		G: uint8(hex >> 8),
		B: uint8(hex),
		A: 0xff,
	}
}

type Buffer struct {
	img *image.RGBA
}

func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Invalid buffer size: %dx%d", width, height)
	}
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func (b *Buffer) Width() int {
	return b.img.Rect.Dx()
}

func (b *Buffer) Height() int {
	return b.img.Rect.Dy()
}

// Image exposes the pixels without copying. Callers must not keep it across frames.
func (b *Buffer) Image() *image.RGBA {
	return b.img
}

// Snapshot returns a copy of the current pixels.
func (b *Buffer) Snapshot() *image.RGBA {
	dst := image.NewRGBA(b.img.Rect)
	copy(dst.Pix, b.img.Pix)
	return dst
}

// CopyTo overwrites dst, which must have the same bounds.
func (b *Buffer) CopyTo(dst *image.RGBA) error {
	if dst.Rect != b.img.Rect {
		return fmt.Errorf("Invalid destination bounds: expected %v, got %v", b.img.Rect, dst.Rect)
	}
	copy(dst.Pix, b.img.Pix)
	return nil
}

func (b *Buffer) Clear(c color.RGBA) {
	draw.Draw(b.img, b.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// MaxRadius is the largest radius FillCircle accepts.
const MaxRadius = math.MaxInt32

var ErrInvalidRadius = errors.New("invalid radius")

// clipSpan returns the part of the pixel span starting at pos with extent n
// that lies in [0, limit). A negative n covers [pos+n, pos).
func clipSpan(pos, n, limit int) (int, int, bool) {
	var lo, hi int
	if n >= 0 {
		if pos >= limit {
			return 0, 0, false
		}
		lo = max(pos, 0)
		if pos < 0 || n < limit-pos {
			hi = min(pos+n, limit)
		} else {
			hi = limit
		}
	} else {
		if pos <= 0 {
			return 0, 0, false
		}
		lo = max(pos+n, 0)
		hi = min(pos, limit)
	}
	return lo, hi, lo < hi
}

// FillRect stamps the pixels [x, x+w) x [y, y+h), clipped to the buffer.
// Negative extents are normalized so the same pixels are covered as with
// the flipped rectangle.
func (b *Buffer) FillRect(x, y, w, h int, c color.RGBA) {
	x0, x1, ok := clipSpan(x, w, b.Width())
	if !ok {
		return
	}
	y0, y1, ok := clipSpan(y, h, b.Height())
	if !ok {
		return
	}
	draw.Draw(b.img, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillCircle stamps every pixel whose offset from (cx, cy) satisfies
// dx*dx+dy*dy <= r*r. Only rows inside the buffer are visited.
func (b *Buffer) FillCircle(cx, cy, r int, c color.RGBA) error {
	if r < 0 || r > MaxRadius {
		return fmt.Errorf("radius %d: %w", r, ErrInvalidRadius)
	}
	w, h, r64 := int64(b.Width()), int64(b.Height()), int64(r)
	x, y := int64(cx), int64(cy)
	if x < -r64 || x > w-1+r64 || y < -r64 || y > h-1+r64 {
		return nil
	}

	rr := r64 * r64
	for row := max(y-r64, 0); row <= min(y+r64, h-1); row++ {
		dy := row - y
		dx := isqrt(rr - dy*dy)
		x0, x1 := max(x-dx, 0), min(x+dx+1, w)
		if x0 < x1 {
			draw.Draw(b.img, image.Rect(int(x0), int(row), int(x1), int(row)+1), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return nil
}

func (b *Buffer) Apply(cmd Command) error {
	switch cmd.Kind {
	case KindRect:
		b.FillRect(cmd.X, cmd.Y, cmd.W, cmd.H, cmd.Color)
		return nil
	case KindCircle:
		return b.FillCircle(cmd.X, cmd.Y, cmd.R, cmd.Color)
	}
	return fmt.Errorf("Invalid command kind: %v", cmd.Kind)
}

// isqrt returns the largest n such that n*n <= v.
func isqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	n := v
	for {
		m := (n + v/n) / 2
		if m >= n {
			return n
		}
		n = m
	}
}
