package engine

import (
	"errors"

	"github.com/ushitora-anqou/aqpong/window"
)

var (
	// ErrInitFailure means the window or its surface could not be created.
	ErrInitFailure = errors.New("init failure")
	// ErrInvalidFrameState is a draw or Present outside a Clear..Present bracket.
	ErrInvalidFrameState = errors.New("invalid frame state")
	// ErrResourceExhausted means the frame was dropped; the next frame may succeed.
	ErrResourceExhausted = window.ErrResourceExhausted
	// ErrInvalidState is an operation the current lifecycle state does not allow.
	ErrInvalidState    = errors.New("invalid context state")
	ErrDestroyed       = errors.New("context destroyed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Debug makes frame state violations panic instead of returning an error.
var Debug = false
