package cpu

import "gochip8/pkg/display"

// Display renders a frame. It is called between steps, never during one.
type Display interface {
	Present(frame display.Frame)
}

// Input reports which hex keys are currently held.
type Input interface {
	Keys() [NumKeys]bool
}
