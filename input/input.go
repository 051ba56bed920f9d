// Package input reduces key events into a per-frame snapshot of logical controls.
package input

import (
	"fmt"

	"github.com/ushitora-anqou/aqpong/constant"
	"github.com/ushitora-anqou/aqpong/util"
)

type Control uint8

const (
	LeftUp    Control = constant.CTRL_LEFT_UP
	LeftDown  Control = constant.CTRL_LEFT_DOWN
	RightUp   Control = constant.CTRL_RIGHT_UP
	RightDown Control = constant.CTRL_RIGHT_DOWN
)

var controlNames = [constant.NUM_CONTROLS]string{
	"left_up",
	"left_down",
	"right_up",
	"right_down",
}

func Controls() []Control {
	return []Control{LeftUp, LeftDown, RightUp, RightDown}
}

func (c Control) String() string {
	if int(c) < len(controlNames) {
		return controlNames[c]
	}
	return fmt.Sprintf("Control(%d)", uint8(c))
}

func ParseControl(name string) (Control, error) {
	for i, n := range controlNames {
		if n == name {
			return Control(i), nil
		}
	}
	return 0, fmt.Errorf("Unknown control: %q", name)
}

// Snapshot is the state of all controls for one frame. Bit n is set while
// Control(n) is held.
type Snapshot uint8

func (s Snapshot) IsActive(c Control) bool {
	return (s>>c)&1 != 0
}

func (s Snapshot) With(c Control, down bool) Snapshot {
	return s&^(1<<c) | Snapshot(util.BoolToU8(down))<<c
}

// Map returns the {controlName: bool} view of the snapshot.
func (s Snapshot) Map() map[string]bool {
	m := make(map[string]bool, len(controlNames))
	for _, c := range Controls() {
		m[c.String()] = s.IsActive(c)
	}
	return m
}

func (s Snapshot) String() string {
	buf := []byte("----")
	marks := "wsud"
	for _, c := range Controls() {
		if s.IsActive(c) {
			buf[c] = marks[c]
		}
	}
	return string(buf)
}
