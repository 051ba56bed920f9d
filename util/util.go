package util

func BoolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TickCounter reports a posedge every time the accumulated ticks reach target.
type TickCounter struct {
	current, target uint
}

func NewTickCounter(target uint) *TickCounter {
	if target == 0 {
		target = 1
	}
	return &TickCounter{target: target}
}

func (tc *TickCounter) Tick(tick uint) bool {
	posedge := false
	tc.current += tick
	if tc.current >= tc.target {
		tc.current -= tc.target
		posedge = true
	}
	return posedge
}

func (tc *TickCounter) Reset() {
	tc.current = 0
}
