package util

import (
	"io"
	"log"
	"os"
)

var flagEnableTrace bool = false
var tracer = log.New(os.Stderr, "[trace] ", log.LstdFlags|log.Lmicroseconds)

func EnableTrace() {
	flagEnableTrace = true
}

func DisableTrace() {
	flagEnableTrace = false
}

// SetTraceOutput redirects trace lines; tests point it at a buffer.
func SetTraceOutput(w io.Writer) {
	tracer.SetOutput(w)
}

func Trace(format string, v ...interface{}) {
	if flagEnableTrace {
		tracer.Printf(format, v...)
	}
}
