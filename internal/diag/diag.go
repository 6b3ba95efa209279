// Package diag provides the diagnostic text sink and sink fan-out.
package diag

import (
	"fmt"
	"log"

	"github.com/sweeney/motion-strip/internal/logic"
)

// Logger writes one human-readable line per event.
type Logger struct {
	logger *log.Logger
}

// NewLogger writes through l, or the standard logger if l is nil.
func NewLogger(l *log.Logger) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{logger: l}
}

// Emit logs the event.
func (d *Logger) Emit(e logic.Event) {
	d.logger.Print(Format(e))
}

// Format renders an event as a single log line.
func Format(e logic.Event) string {
	line := fmt.Sprintf("event: %s t=%dms avg=%d strip=%s", e.Type, e.At, e.Average, stateString(e.StripOn))
	if e.Detail != "" {
		line += " (" + e.Detail + ")"
	}
	return line
}

// Nop discards events.
var Nop logic.Sink = logic.SinkFunc(func(logic.Event) {})

// Multi fans an event out to every sink in order. Nil sinks are skipped.
func Multi(sinks ...logic.Sink) logic.Sink {
	var live []logic.Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return Nop
	case 1:
		return live[0]
	}
	return logic.SinkFunc(func(e logic.Event) {
		for _, s := range live {
			s.Emit(e)
		}
	})
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
