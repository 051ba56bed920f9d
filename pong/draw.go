package pong

import (
	"fmt"

	"github.com/ushitora-anqou/aqpong/framebuf"
)

type Canvas interface {
	Width() int
	Height() int
	DrawRect(x, y, w, h int) error
	DrawCircle(x, y, r int) error
	DrawText(x, y int, s string) error
}

// Draw emits the primitives of one frame. The canvas must be inside a frame.
func Draw(c Canvas, s *GameState) error {
	for _, p := range []*Paddle{&s.Left, &s.Right} {
		if err := c.DrawRect(p.X, p.Y, p.W, p.H); err != nil {
			return err
		}
	}
	if err := c.DrawCircle(s.Ball.X, s.Ball.Y, s.Ball.R); err != nil {
		return err
	}
	if !s.Rules.Scoring {
		return nil
	}

	score := fmt.Sprintf("%d   %d", s.Score[Left], s.Score[Right])
	if err := c.DrawText((c.Width()-framebuf.TextWidth(score))/2, 4, score); err != nil {
		return err
	}
	if s.Over {
		msg := fmt.Sprintf("%s WINS", s.Winner)
		x := (c.Width() - framebuf.TextWidth(msg)) / 2
		y := (c.Height() - framebuf.TextHeight()) / 2
		if err := c.DrawText(x, y, msg); err != nil {
			return err
		}
	}
	return nil
}
