package pong

import (
	"fmt"
	"testing"

	"github.com/ushitora-anqou/aqpong/engine"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/window"
)

func wallRules() Rules {
	r := DefaultRules()
	r.Scoring = false
	return r
}

func TestBallAdvancesLinearly(t *testing.T) {
	s := NewGameState(wallRules())
	for n := 1; n <= 60; n++ {
		if ev := Update(s, 0); ev != 0 {
			t.Fatalf("frame %d: unexpected events %08b", n, ev)
		}
		want := 200 + 3*n
		if s.Ball.X != want || s.Ball.Y != want {
			t.Fatalf("frame %d: ball at (%d, %d), expected (%d, %d)", n, s.Ball.X, s.Ball.Y, want, want)
		}
	}
}

func TestWallModeReflectsX(t *testing.T) {
	table := []struct {
		x, vx int
	}{
		{395, 3},
		{398, 3},
		{5, -3},
		{2, -3},
	}
	for _, entry := range table {
		s := NewGameState(wallRules())
		s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = entry.x, 50, entry.vx, 0
		ev := Update(s, 0)
		if !ev.Has(EventWallBounce) || ev.Has(EventScored) {
			t.Fatalf("x=%d: got events %08b", entry.x, ev)
		}
		if s.Ball.VX != -entry.vx {
			t.Fatalf("x=%d: vx %d, expected %d", entry.x, s.Ball.VX, -entry.vx)
		}
		if s.Score != [2]int{} {
			t.Fatalf("x=%d: score changed in wall mode: %v", entry.x, s.Score)
		}
	}
}

func TestTopBottomReflectY(t *testing.T) {
	s := NewGameState(DefaultRules())
	s.Ball.Y, s.Ball.VY = 4, -3
	if ev := Update(s, 0); !ev.Has(EventWallBounce) || s.Ball.VY != 3 {
		t.Fatalf("top: events %08b vy %d", ev, s.Ball.VY)
	}
	s.Ball.Y, s.Ball.VY = 396, 3
	if ev := Update(s, 0); !ev.Has(EventWallBounce) || s.Ball.VY != -3 {
		t.Fatalf("bottom: events %08b vy %d", ev, s.Ball.VY)
	}
	// moving away from the wall is left alone
	s.Ball.Y, s.Ball.VY = 4, 3
	if ev := Update(s, 0); ev != 0 || s.Ball.Y != 7 {
		t.Fatalf("leaving top: events %08b y %d", ev, s.Ball.Y)
	}
}

func TestScoringServesTowardConcedingSide(t *testing.T) {
	s := NewGameState(DefaultRules())
	s.Ball.X, s.Ball.Y, s.Ball.VX = 6, 50, -3
	if ev := Update(s, 0); ev != 0 || s.Ball.X != 3 {
		t.Fatalf("approach: events %08b x %d", ev, s.Ball.X)
	}
	ev := Update(s, 0)
	if !ev.Has(EventScored) || ev.Has(EventMatchOver) {
		t.Fatalf("goal: events %08b", ev)
	}
	if s.Score != [2]int{0, 1} {
		t.Fatalf("score: got %v, expected [0 1]", s.Score)
	}
	if s.Ball.X != 200 || s.Ball.Y != 200 || s.Ball.VX != -3 || s.Ball.VY != 3 {
		t.Fatalf("serve: ball %+v", s.Ball)
	}

	s.Ball.X, s.Ball.Y, s.Ball.VX = 397, 50, 3
	Update(s, 0)
	if s.Score != [2]int{1, 1} || s.Ball.VX != 3 {
		t.Fatalf("right goal: score %v ball %+v", s.Score, s.Ball)
	}
}

func TestMatchOver(t *testing.T) {
	rules := DefaultRules()
	rules.WinScore = 1
	s := NewGameState(rules)
	s.Ball.X, s.Ball.Y, s.Ball.VX = 3, 50, -3
	ev := Update(s, 0)
	if !ev.Has(EventScored) || !ev.Has(EventMatchOver) {
		t.Fatalf("events %08b", ev)
	}
	if !s.Over || s.Winner != Right {
		t.Fatalf("over %v winner %v", s.Over, s.Winner)
	}
	frame := s.Frame
	if ev := Update(s, input.Snapshot(0).With(input.LeftUp, true)); ev != 0 || s.Frame != frame || s.Left.Y != 100 {
		t.Fatalf("Update after match over changed state: %v", s)
	}
	s.Reset()
	if s.Over || s.Score != [2]int{} {
		t.Fatalf("Reset: %v", s)
	}
}

func TestPaddleMovement(t *testing.T) {
	table := []struct {
		snap        input.Snapshot
		frames      int
		left, right int
	}{
		{input.Snapshot(0).With(input.LeftUp, true), 1, 95, 100},
		{input.Snapshot(0).With(input.LeftDown, true), 1, 105, 100},
		{input.Snapshot(0).With(input.RightUp, true), 1, 100, 95},
		{input.Snapshot(0).With(input.RightDown, true), 3, 100, 115},
		{input.Snapshot(0).With(input.LeftUp, true).With(input.LeftDown, true), 4, 100, 100},
		{input.Snapshot(0).With(input.LeftUp, true).With(input.RightDown, true), 100, 0, 200},
	}
	for i, entry := range table {
		s := NewGameState(wallRules())
		for n := 0; n < entry.frames; n++ {
			Update(s, entry.snap)
		}
		if s.Left.Y != entry.left || s.Right.Y != entry.right {
			t.Fatalf("case %d (%v): paddles %d/%d, expected %d/%d", i, entry.snap, s.Left.Y, s.Right.Y, entry.left, entry.right)
		}
	}
}

func TestPaddleHit(t *testing.T) {
	table := []struct {
		x, y, vx int
		hit      bool
	}{
		{23, 150, -3, true},
		{6, 101, -3, true},
		{23, 150, 3, false},
		{25, 150, -3, false},
		{23, 100, -3, false},
		{23, 300, -3, false},
		{377, 150, 3, true},
		{394, 299, 3, true},
		{377, 150, -3, false},
		{375, 150, 3, false},
	}
	for _, entry := range table {
		s := NewGameState(DefaultRules())
		s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = entry.x, entry.y, entry.vx, 0
		ev := Update(s, 0)
		if ev.Has(EventPaddleHit) != entry.hit {
			t.Fatalf("ball (%d, %d) vx %d: hit %v, expected %v", entry.x, entry.y, entry.vx, ev.Has(EventPaddleHit), entry.hit)
		}
		wantVX := entry.vx
		if entry.hit {
			wantVX = -wantVX
		}
		if s.Ball.VX != wantVX {
			t.Fatalf("ball (%d, %d): vx %d, expected %d", entry.x, entry.y, s.Ball.VX, wantVX)
		}
	}
}

func TestAutopilotFollowsBall(t *testing.T) {
	rules := DefaultRules()
	rules.Autopilot[Right] = true
	s := NewGameState(rules)
	s.Ball.Y, s.Ball.VY = 50, 0
	Update(s, 0)
	if s.Right.Y != 95 || s.Left.Y != 100 {
		t.Fatalf("paddles %d/%d, expected 100/95", s.Left.Y, s.Right.Y)
	}

	s.Ball.Y = 200
	s.Right.Y = 100
	Update(s, input.Snapshot(0).With(input.RightUp, true))
	if s.Right.Y != 100 {
		t.Fatalf("centered autopilot moved paddle to %d", s.Right.Y)
	}
}

type recordingCanvas struct {
	calls []string
}

func (c *recordingCanvas) Width() int  { return 400 }
func (c *recordingCanvas) Height() int { return 400 }

func (c *recordingCanvas) DrawRect(x, y, w, h int) error {
	c.calls = append(c.calls, fmt.Sprintf("rect %d %d %d %d", x, y, w, h))
	return nil
}

func (c *recordingCanvas) DrawCircle(x, y, r int) error {
	c.calls = append(c.calls, fmt.Sprintf("circle %d %d %d", x, y, r))
	return nil
}

func (c *recordingCanvas) DrawText(x, y int, s string) error {
	c.calls = append(c.calls, "text "+s)
	return nil
}

func TestDrawPrimitives(t *testing.T) {
	s := NewGameState(DefaultRules())
	s.Score = [2]int{2, 7}
	c := &recordingCanvas{}
	if err := Draw(c, s); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	want := []string{
		"rect 5 100 20 200",
		"rect 375 100 20 200",
		"circle 200 200 5",
		"text 2   7",
	}
	if fmt.Sprint(c.calls) != fmt.Sprint(want) {
		t.Fatalf("got %q, expected %q", c.calls, want)
	}

	s.Over, s.Winner = true, Left
	c.calls = nil
	Draw(c, s)
	if len(c.calls) != 5 || c.calls[4] != "text left WINS" {
		t.Fatalf("match over: got %q", c.calls)
	}
}

func TestDrawOnEngine(t *testing.T) {
	ctx, err := engine.Init(400, 400, window.OpenHeadless)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Destroy()

	s := NewGameState(wallRules())
	ctx.Clear()
	if err := Draw(ctx, s); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := ctx.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	frame, pal := ctx.Frame(), ctx.Palette()
	probes := []struct {
		x, y int
		want string
	}{
		{5, 100, "paddle"},
		{24, 299, "paddle"},
		{375, 100, "paddle"},
		{394, 299, "paddle"},
		{200, 200, "ball"},
		{205, 200, "ball"},
		{200, 195, "ball"},
		{4, 100, "background"},
		{25, 150, "background"},
		{206, 200, "background"},
	}
	colors := map[string]interface{}{"paddle": pal.Paddle, "ball": pal.Ball, "background": pal.Background}
	for _, p := range probes {
		if got := frame.RGBAAt(p.x, p.y); got != colors[p.want] {
			t.Fatalf("(%d, %d): got %v, expected %s", p.x, p.y, got, p.want)
		}
	}
}
