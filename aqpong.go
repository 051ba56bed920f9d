package main

import (
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ushitora-anqou/aqpong/capture"
	"github.com/ushitora-anqou/aqpong/config"
	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/engine"
	"github.com/ushitora-anqou/aqpong/pong"
	"github.com/ushitora-anqou/aqpong/sound"
	"github.com/ushitora-anqou/aqpong/util"
	"github.com/ushitora-anqou/aqpong/window"
)

var newRecorder = capture.NewRecorder

type AQPong struct {
	cfg      config.Config
	ctx      *engine.Context
	state    *pong.GameState
	beeper   *sound.Beeper
	sync     *window.TimeSynchronizer
	recorder *capture.Recorder

	audioDebt int
	frames    int
	hits      int
	bounces   int
	shots     []string
}

func rulesFromConfig(cfg *config.Config) pong.Rules {
	rules := pong.DefaultRules()
	rules.Width = cfg.Width
	rules.Height = cfg.Height
	rules.Scoring = cfg.Scoring
	rules.WinScore = cfg.WinScore
	rules.Autopilot = cfg.AutopilotSides()
	return rules
}

func NewAQPong(cfg config.Config, open window.Opener) (*AQPong, error) {
	ctx, err := engine.Init(cfg.Width, cfg.Height, open)
	if err != nil {
		return nil, err
	}

	a := &AQPong{
		cfg:    cfg,
		ctx:    ctx,
		state:  pong.NewGameState(rulesFromConfig(&cfg)),
		beeper: sound.NewBeeper(),
	}
	if cfg.FrameDelayMs == 0 {
		a.sync = window.NewTimeSynchronizer(ctx.Clock(), cfg.FPS)
	}

	if cfg.Record != "" {
		a.recorder, err = newRecorder(capture.RecorderOptions{
			Path:       cfg.Record,
			Width:      cfg.Width,
			Height:     cfg.Height,
			FPS:        cfg.RecordFPS(),
			FfmpegPath: cfg.FfmpegPath,
			Codec:      cfg.Codec,
		})
		if err != nil {
			return nil, errors.Join(err, ctx.Destroy())
		}
	}
	return a, nil
}

func (a *AQPong) playEvents(ev pong.Events) {
	if !a.cfg.Sound {
		return
	}
	switch {
	case ev.Has(pong.EventScored):
		a.beeper.Play(sound.ToneScore)
		a.ctx.Beep()
	case ev.Has(pong.EventPaddleHit):
		a.beeper.Play(sound.ToneHit)
	case ev.Has(pong.EventWallBounce):
		a.beeper.Play(sound.ToneWall)
	}
}

// feedAudio enqueues one buffer each time a buffer's worth of frame time
// has elapsed.
func (a *AQPong) feedAudio() error {
	fps := a.cfg.RecordFPS()
	a.audioDebt += constant.AUDIO_FREQ / fps
	for a.audioDebt >= constant.AUDIO_SAMPLES {
		a.audioDebt -= constant.AUDIO_SAMPLES
		buf, ok := a.beeper.Fill()
		if !ok {
			continue
		}
		if err := a.ctx.EnqueueAudio(buf); err != nil {
			return err
		}
	}
	return nil
}

func (a *AQPong) pace() error {
	if a.sync != nil {
		a.sync.MaySleep()
		return nil
	}
	return a.ctx.Delay(a.cfg.FrameDelayMs)
}

func (a *AQPong) afterPresent() error {
	if a.ctx.ScreenshotRequested() {
		path, err := capture.SaveScreenshot(a.cfg.ScreenshotDir, a.ctx.Presented(), a.ctx.Frame())
		if err != nil {
			return err
		}
		a.shots = append(a.shots, path)
		log.Printf("Screenshot saved to %s", path)
	}
	if a.recorder != nil {
		if err := a.recorder.WriteFrame(a.ctx.Frame()); err != nil {
			return err
		}
	}
	return nil
}

// Step runs one frame and reports whether the loop should continue.
func (a *AQPong) Step() (bool, error) {
	ctx := a.ctx
	if err := ctx.Clear(); err != nil {
		return false, err
	}
	if err := pong.Draw(ctx, a.state); err != nil {
		return false, err
	}
	snap, err := ctx.PollInput()
	if err != nil {
		return false, err
	}

	ev := pong.Update(a.state, snap)
	if ev.Has(pong.EventPaddleHit) {
		a.hits++
	}
	if ev.Has(pong.EventWallBounce) {
		a.bounces++
	}
	if ev.Has(pong.EventMatchOver) {
		log.Printf("Match over: %s wins %d:%d", a.state.Winner, a.state.Score[pong.Left], a.state.Score[pong.Right])
	}
	a.playEvents(ev)
	if err := a.feedAudio(); err != nil {
		util.Trace("aqpong: audio: %v", err)
	}

	if err := a.pace(); err != nil {
		return false, err
	}
	if err := ctx.Present(); err != nil {
		if !errors.Is(err, engine.ErrResourceExhausted) {
			return false, err
		}
		util.Trace("aqpong: %v", err)
	} else if err := a.afterPresent(); err != nil {
		return false, err
	}
	a.frames++

	if ctx.PollQuit() {
		return false, nil
	}
	if a.cfg.Frames > 0 && a.frames >= a.cfg.Frames {
		return false, nil
	}
	return true, nil
}

func (a *AQPong) Run() error {
	return a.ctx.RunMain(func() error {
		for {
			cont, err := a.Step()
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	})
}

// Close stops the recorder and destroys the context.
func (a *AQPong) Close() error {
	var errs []error
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.ctx.State() != engine.Destroyed {
		if err := a.ctx.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *AQPong) Summary(w io.Writer, tag language.Tag) {
	p := message.NewPrinter(tag)
	p.Fprintf(w, "%d frames (%d presented, %d dropped)\n", a.frames, a.ctx.Presented(), a.ctx.Dropped())
	if a.state.Rules.Scoring {
		p.Fprintf(w, "score %d:%d\n", a.state.Score[pong.Left], a.state.Score[pong.Right])
	}
	p.Fprintf(w, "%d paddle hits, %d wall bounces\n", a.hits, a.bounces)
	if a.sync != nil && a.sync.Late() > 0 {
		p.Fprintf(w, "fell behind schedule %d times\n", a.sync.Late())
	}
	if a.recorder != nil {
		p.Fprintf(w, "%d frames recorded to %s\n", a.recorder.Written(), a.cfg.Record)
	}
	for _, path := range a.shots {
		fmt.Fprintf(w, "screenshot %s\n", path)
	}
}
