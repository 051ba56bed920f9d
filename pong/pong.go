// Package pong is the caller-side game loop driver: it owns the match state
// and advances it from one input snapshot per frame.
package pong

import (
	"fmt"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/input"
	"github.com/ushitora-anqou/aqpong/util"
)

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

type Events uint8

const (
	EventPaddleHit Events = 1 << iota
	EventWallBounce
	EventScored
	EventMatchOver
)

func (e Events) Has(flag Events) bool {
	return e&flag != 0
}

type Paddle struct {
	X, Y, W, H int
}

type Ball struct {
	X, Y, VX, VY, R int
}

type Rules struct {
	Width, Height int
	PaddleStep    int
	// Scoring makes the left and right borders goals. Without it the ball
	// bounces off them.
	Scoring bool
	// WinScore ends the match when a side reaches it. 0 plays forever.
	WinScore int
	// Autopilot lists the sides steered by the computer.
	Autopilot [2]bool
}

func DefaultRules() Rules {
	return Rules{
		Width:      constant.WINDOW_WIDTH,
		Height:     constant.WINDOW_HEIGHT,
		PaddleStep: constant.PADDLE_STEP,
		Scoring:    true,
	}
}

type GameState struct {
	Rules  Rules
	Left   Paddle
	Right  Paddle
	Ball   Ball
	Score  [2]int
	Over   bool
	Winner Side
	Frame  int
}

func NewGameState(rules Rules) *GameState {
	s := &GameState{Rules: rules}
	s.Reset()
	return s
}

// Reset puts paddles and ball back to their starting positions and clears the score.
func (s *GameState) Reset() {
	s.Left = Paddle{X: constant.LEFT_PADDLE_X, Y: constant.PADDLE_START_Y, W: constant.PADDLE_WIDTH, H: constant.PADDLE_HEIGHT}
	s.Right = Paddle{X: constant.RIGHT_PADDLE_X, Y: constant.PADDLE_START_Y, W: constant.PADDLE_WIDTH, H: constant.PADDLE_HEIGHT}
	s.Score = [2]int{}
	s.Over = false
	s.Frame = 0
	s.serve(Right)
}

// serve places the ball at the center of the field moving toward side.
func (s *GameState) serve(toward Side) {
	vx := constant.BALL_START_VELOCITY
	if toward == Left {
		vx = -vx
	}
	s.Ball = Ball{
		X:  constant.BALL_START_X,
		Y:  constant.BALL_START_Y,
		VX: vx,
		VY: constant.BALL_START_VELOCITY,
		R:  constant.BALL_RADIUS,
	}
}

func (s *GameState) paddle(side Side) *Paddle {
	if side == Left {
		return &s.Left
	}
	return &s.Right
}

func (s *GameState) String() string {
	return fmt.Sprintf("frame=%d score=%d:%d ball=(%d,%d) v=(%d,%d) paddles=%d/%d",
		s.Frame, s.Score[Left], s.Score[Right], s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY, s.Left.Y, s.Right.Y)
}

// Update advances the match by one frame.
func Update(s *GameState, snap input.Snapshot) Events {
	if s.Over {
		return 0
	}
	snap = Autopilot(s, snap)
	movePaddles(s, snap)

	var ev Events
	ev |= collideWithPaddles(s)
	ev |= collideWithBorders(s)

	if !ev.Has(EventScored) {
		s.Ball.X += s.Ball.VX
		s.Ball.Y += s.Ball.VY
	}
	s.Frame++

	if ev != 0 {
		util.Trace("pong: %08b %v", ev, s)
	}
	return ev
}

func movePaddles(s *GameState, snap input.Snapshot) {
	step := s.Rules.PaddleStep
	maxY := s.Rules.Height - constant.PADDLE_HEIGHT
	if maxY < constant.PADDLE_MIN_Y {
		maxY = constant.PADDLE_MIN_Y
	}
	move := func(p *Paddle, up, down input.Control) {
		if snap.IsActive(up) {
			p.Y -= step
		}
		if snap.IsActive(down) {
			p.Y += step
		}
		p.Y = util.ClampInt(p.Y, constant.PADDLE_MIN_Y, maxY)
	}
	move(&s.Left, input.LeftUp, input.LeftDown)
	move(&s.Right, input.RightUp, input.RightDown)
}

func (p *Paddle) contains(x, y int) bool {
	return p.X < x && x < p.X+p.W && p.Y < y && y < p.Y+p.H
}

// Both paddles use the same hit box: the ball center strictly inside the
// paddle rectangle while moving toward it.
func collideWithPaddles(s *GameState) Events {
	b := &s.Ball
	if b.VX < 0 && s.Left.contains(b.X, b.Y) {
		b.VX = -b.VX
		return EventPaddleHit
	}
	if b.VX > 0 && s.Right.contains(b.X, b.Y) {
		b.VX = -b.VX
		return EventPaddleHit
	}
	return 0
}

func collideWithBorders(s *GameState) Events {
	var ev Events
	b := &s.Ball
	w, h := s.Rules.Width, s.Rules.Height

	if (b.Y <= b.R && b.VY < 0) || (b.Y >= h-b.R && b.VY > 0) {
		b.VY = -b.VY
		ev |= EventWallBounce
	}

	leftOut := b.X <= b.R && b.VX < 0
	rightOut := b.X >= w-b.R && b.VX > 0
	if !leftOut && !rightOut {
		return ev
	}
	if !s.Rules.Scoring {
		b.VX = -b.VX
		return ev | EventWallBounce
	}

	conceded, scorer := Left, Right
	if rightOut {
		conceded, scorer = Right, Left
	}
	s.Score[scorer]++
	ev |= EventScored
	if s.Rules.WinScore > 0 && s.Score[scorer] >= s.Rules.WinScore {
		s.Over = true
		s.Winner = scorer
		ev |= EventMatchOver
	}
	s.serve(conceded)
	return ev
}

// Autopilot overrides the snapshot for computer-controlled sides: the paddle
// follows the ball when its center is more than a step away.
func Autopilot(s *GameState, snap input.Snapshot) input.Snapshot {
	steer := func(p *Paddle, up, down input.Control) {
		center := p.Y + p.H/2
		snap = snap.With(up, s.Ball.Y < center-s.Rules.PaddleStep)
		snap = snap.With(down, s.Ball.Y > center+s.Rules.PaddleStep)
	}
	if s.Rules.Autopilot[Left] {
		steer(&s.Left, input.LeftUp, input.LeftDown)
	}
	if s.Rules.Autopilot[Right] {
		steer(&s.Right, input.RightUp, input.RightDown)
	}
	return snap
}
