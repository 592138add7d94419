// Package clock paces a CHIP-8 machine against wall-clock time.
package clock

import "time"

// MaxCatchUp caps the time a single Advance may account for, so a stalled
// host (debugger, suspended laptop) does not fire thousands of steps at once.
const MaxCatchUp = 250 * time.Millisecond

// Pacer turns elapsed time into due instruction steps and due timer ticks.
// The two accumulators are independent: changing the instruction rate never
// changes how fast the delay and sound timers run.
type Pacer struct {
	stepHz  int64
	timerHz int64

	// accumulated nanoseconds scaled by the rate; a whole event is due per 1e9
	stepAcc  int64
	timerAcc int64
}

// NewPacer returns a Pacer for the given rates. Both must be positive.
func NewPacer(instructionHz, timerHz int) *Pacer {
	if instructionHz <= 0 || timerHz <= 0 {
		panic("clock: rates must be positive")
	}
	return &Pacer{stepHz: int64(instructionHz), timerHz: int64(timerHz)}
}

// Advance accounts for elapsed wall-clock time and returns how many
// instructions and timer ticks are now due.
func (p *Pacer) Advance(elapsed time.Duration) (steps, ticks int) {
	if elapsed <= 0 {
		return 0, 0
	}
	if elapsed > MaxCatchUp {
		elapsed = MaxCatchUp
	}
	ns := elapsed.Nanoseconds()

	p.stepAcc += ns * p.stepHz
	steps = int(p.stepAcc / int64(time.Second))
	p.stepAcc %= int64(time.Second)

	p.timerAcc += ns * p.timerHz
	ticks = int(p.timerAcc / int64(time.Second))
	p.timerAcc %= int64(time.Second)
	return steps, ticks
}

// Reset drops any partially accumulated time.
func (p *Pacer) Reset() {
	p.stepAcc = 0
	p.timerAcc = 0
}
