// Package sound synthesizes the short square-wave beeps played on game events.
package sound

import (
	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/util"
)

type Tone struct {
	Freq     int     // Hz
	Duration int     // ms
	Volume   float32 // 0 to 1
}

var (
	ToneHit   = Tone{Freq: 440, Duration: 60, Volume: 0.25}
	ToneWall  = Tone{Freq: 220, Duration: 40, Volume: 0.2}
	ToneScore = Tone{Freq: 880, Duration: 250, Volume: 0.3}
)

// envelope decays the volume linearly to zero over the tone's length.
type envelope struct {
	initVolume float32
	remaining  int
	length     int
}

func (e *envelope) getAmplitude(src float32 /* NOTE: -1 to 1 */) float32 {
	if e.length == 0 {
		return 0
	}
	return src * e.initVolume * float32(e.remaining) / float32(e.length)
}

type channelSquare struct {
	env         envelope
	waveDutyPos int
	freqTick    *util.TickCounter
}

func (ch *channelSquare) trigger(t Tone) {
	length := constant.AUDIO_FREQ * t.Duration / 1000
	ch.env = envelope{initVolume: t.Volume, remaining: length, length: length}
	ch.waveDutyPos = 0
	// Two half periods per cycle.
	ch.freqTick = nil
	if t.Freq > 0 {
		ch.freqTick = util.NewTickCounter(uint(constant.AUDIO_FREQ / (2 * t.Freq)))
	}
}

func (ch *channelSquare) active() bool {
	return ch.env.remaining > 0
}

func (ch *channelSquare) sample() float32 {
	if !ch.active() {
		return 0
	}
	val := float32(-1.0)
	if ch.waveDutyPos == 1 {
		val = 1.0
	}
	val = ch.env.getAmplitude(val)

	if ch.freqTick != nil && ch.freqTick.Tick(1) {
		ch.waveDutyPos ^= 1
	}
	ch.env.remaining--
	return val
}

type Beeper struct {
	ch     channelSquare
	buffer []float32
}

func NewBeeper() *Beeper {
	return &Beeper{
		buffer: make([]float32, constant.AUDIO_SAMPLES*constant.CHANNELS),
	}
}

// Play restarts the channel with t, cutting off any tone still playing.
func (b *Beeper) Play(t Tone) {
	b.ch.trigger(t)
}

func (b *Beeper) Playing() bool {
	return b.ch.active()
}

// Fill renders the next buffer of interleaved stereo samples. It returns
// false when nothing is playing so callers can skip enqueueing silence.
func (b *Beeper) Fill() ([]float32, bool) {
	if !b.ch.active() {
		return nil, false
	}
	for i := 0; i < len(b.buffer); i += constant.CHANNELS {
		v := b.ch.sample()
		for c := 0; c < constant.CHANNELS; c++ {
			b.buffer[i+c] = v
		}
	}
	return b.buffer, true
}
