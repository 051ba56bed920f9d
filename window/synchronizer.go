package window

type TimeSynchronizer struct {
	prevTicks, usPerFrame int64
	clock                 Clock
	late                  int
}

func NewTimeSynchronizer(clock Clock, targetFPS float64) *TimeSynchronizer {
	return &TimeSynchronizer{
		prevTicks:  clock.Ticks(),
		usPerFrame: int64(1000000.0 / targetFPS),
		clock:      clock,
	}
}

// MaySleep sleeps until the next frame boundary. When the caller has fallen
// more than one frame behind, the schedule restarts from now instead of
// rushing the missed frames.
func (ts *TimeSynchronizer) MaySleep() {
	cur := ts.clock.Ticks()
	if cur < ts.prevTicks {
		ts.prevTicks = cur
		return
	}
	diff := ts.usPerFrame - (cur - ts.prevTicks)
	switch {
	case diff > 0:
		ts.clock.Delay(diff)
		ts.prevTicks += ts.usPerFrame
	case -diff > ts.usPerFrame:
		ts.late++
		ts.prevTicks = cur
	default:
		ts.prevTicks += ts.usPerFrame
	}
}

// Late returns how many times the schedule had to be restarted.
func (ts *TimeSynchronizer) Late() int {
	return ts.late
}
