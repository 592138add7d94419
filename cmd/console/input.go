package main

import (
	"time"

	"gochip8/pkg/clock"
	"gochip8/pkg/config"
)

// Terminals report presses but never releases, so a pressed key is held for
// keyHold. It outlasts the usual auto-repeat delay so a held key stays down
// until repeats start refreshing it.
const keyHold = 500 * time.Millisecond

const (
	ctrlC = 0x03
	ctrlP = 0x10
	ctrlR = 0x12
	esc   = 0x1B
)

// Escape sequence states.
const (
	escNone = iota
	escStart
	escCSI // ESC [ params... final
	escSS3 // ESC O x
)

// router turns raw stdin bytes into keypad and control events. Arrow and
// function keys arrive as escape sequences and are swallowed whole.
type router struct {
	keys   config.Keymap
	keypad *clock.Keypad
	quit   func()

	escState int
}

func (r *router) route(b byte) {
	if r.swallowEscape(b) {
		return
	}
	switch b {
	case ctrlC:
		r.quit()
	case ctrlP:
		r.keypad.TogglePause()
	case ctrlR:
		r.keypad.RequestReset()
	default:
		if hex, ok := r.keys.Lookup(rune(b)); ok {
			r.keypad.Hold(hex, keyHold)
		}
	}
}

// swallowEscape reports whether b belongs to an escape sequence. A byte after
// a bare ESC that does not open a sequence is routed normally (Alt+key).
func (r *router) swallowEscape(b byte) bool {
	switch r.escState {
	case escStart:
		switch b {
		case '[':
			r.escState = escCSI
			return true
		case 'O':
			r.escState = escSS3
			return true
		case esc:
			return true
		}
		r.escState = escNone
		return false
	case escCSI:
		if b >= 0x40 && b <= 0x7E {
			r.escState = escNone
		}
		return true
	case escSS3:
		r.escState = escNone
		return true
	}
	if b == esc {
		r.escState = escStart
		return true
	}
	return false
}
