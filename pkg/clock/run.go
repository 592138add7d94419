package clock

import (
	"context"
	"time"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
)

// FrameInterval is how often Run wakes up to step the machine and present.
const FrameInterval = time.Second / 60

// Machine is the part of *cpu.CPU the run loop drives.
type Machine interface {
	Step() (cpu.Effect, error)
	TickTimers()
	SetKeys(keys [cpu.NumKeys]bool)
	Snapshot() display.Frame
	Reset()
}

// Control is implemented by inputs that can pause or reset the machine.
type Control interface {
	Paused() bool
	TakeReset() bool
}

// Frame copies keys into m, executes steps instructions and then applies
// ticks timer decrements. It stops at the first fault. changed reports
// whether any executed instruction touched the screen.
func Frame(m Machine, keys [cpu.NumKeys]bool, steps, ticks int) (changed bool, err error) {
	m.SetKeys(keys)
	for i := 0; i < steps; i++ {
		fx, err := m.Step()
		if err != nil {
			return changed, err
		}
		if fx.Changed() {
			changed = true
		}
	}
	for i := 0; i < ticks; i++ {
		m.TickTimers()
	}
	return changed, nil
}

// Run drives m at cfg's rates until ctx is cancelled or the machine faults.
// Cancellation returns nil; a fault is returned as is, after the last frame
// has been presented.
func Run(ctx context.Context, m Machine, cfg config.Config, in cpu.Input, out cpu.Display) error {
	pacer := NewPacer(cfg.InstructionHz, cfg.TimerHz)
	ctl, _ := in.(Control)

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	out.Present(m.Snapshot())
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			if ctl != nil {
				if ctl.TakeReset() {
					m.Reset()
					pacer.Reset()
					out.Present(m.Snapshot())
				}
				if ctl.Paused() {
					pacer.Reset()
					continue
				}
			}

			steps, ticks := pacer.Advance(elapsed)
			changed, err := Frame(m, in.Keys(), steps, ticks)
			if changed || err != nil {
				out.Present(m.Snapshot())
			}
			if err != nil {
				return err
			}
		}
	}
}
